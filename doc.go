// Package pgadapt converts Go values to PostgreSQL wire data and back.
/*
Values travel to and from the server in one of two formats: text or binary. pgadapt keeps registries of encoders,
keyed by Go type and format, and decoders, keyed by type oid and format. Registries exist at three scopes: the global
scope held by a Map, a connection scope, and a cursor scope belonging to a connection. A lookup consults the cursor,
then the connection, then the global registry and the first match wins.

	m := pgadapt.NewMap()
	conn, err := pgadapt.NewConnScope(nil)
	if err != nil {
		return err
	}

	// Only Transformers bound to conn or its cursors see this decoder.
	err = m.RegisterDecoder(pgadapt.Int4OID, pgadapt.DecodeFunc(func(src []byte) (any, error) {
		return strconv.Atoi(string(src))
	}), conn)

Encoders and Decoders

An Encoder is either an EncodeFunc, used as is, or an EncoderFactory, which is called once per Transformer with the
concrete type and connection to build the function. The same holds for DecodeFunc and DecoderFactory. Factories are
how a conversion adapts to the client encoding or server version of a connection.

Encoding a value whose type has no encoder in any scope fails with an *AdaptError. Decoding never fails for lack of
a decoder: unknown oids fall back to the decoders registered for InvalidOID, which yield a string for text data and
a []byte for binary data.

Transformers

A Transformer is bound to a scope and handles one query: it encodes the parameters and decodes the result rows,
caching every conversion it resolves. Registrations made after a Transformer resolved a key are not seen by it.

	t, err := m.NewTransformer(conn.NewCursor())
	params, oids, err := t.EncodeSequence([]any{int64(5), nil}, []pgadapt.Format{pgadapt.BinaryFormat, pgadapt.TextFormat})

	rv, err := t.DecodeRow(result, 0)
	values, err := rv.Values()

NULL

nil, including a nil pointer, map or slice, encodes to SQL NULL with oid TextOID. A NULL column decodes to nil.
Neither consults a conversion.
*/
package pgadapt
