package pgresult

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/chunkreader/v2"
	"github.com/jackc/pgproto3/v2"
	"github.com/tim-schilling/pgadapt"
)

// minBufLen is the initial read buffer size. Larger messages grow the buffer.
const minBufLen = 8192

// Reader reads the backend messages answering one query from a PostgreSQL protocol stream and buffers the results.
// The stream must be positioned after the startup phase, for example a connection on which a Query message was just
// sent, or a capture of the server side of such a conversation.
//
// ParameterStatus messages are applied to the connection scope, so a change of client_encoding is seen by
// Transformers created afterwards.
type Reader struct {
	r        io.Reader
	cr       *countingChunkReader
	frontend *pgproto3.Frontend
	scope    *pgadapt.ConnScope

	// Logger receives notices and parameter changes. nil disables logging.
	Logger pgadapt.Logger

	// LogLevel is the maximum level that is sent to Logger. The zero value means LogLevelInfo.
	LogLevel pgadapt.LogLevel
}

// NewReader returns a Reader reading from r. scope may be nil, in which case ParameterStatus messages are ignored.
func NewReader(r io.Reader, scope *pgadapt.ConnScope) *Reader {
	src := &countingReader{r: r}
	chunks, err := chunkreader.NewConfig(src, chunkreader.Config{MinBufLen: minBufLen})
	if err != nil {
		panic(err) // only fails for an invalid Config
	}
	cr := &countingChunkReader{cr: chunks, src: src}

	return &Reader{
		r:        r,
		cr:       cr,
		frontend: pgproto3.NewFrontend(cr, io.Discard),
		scope:    scope,
	}
}

// countingReader counts the bytes read from the stream.
type countingReader struct {
	r io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.n += int64(n)
	return n, err
}

// countingChunkReader counts the bytes handed to the frontend. pgproto3 reports io.ErrUnexpectedEOF for a stream that
// ends on a message boundary as well as for one that ends inside a message, so the Reader tells them apart by
// comparing what was read with what was consumed.
type countingChunkReader struct {
	cr       *chunkreader.ChunkReader
	src      *countingReader
	consumed int64
	calls    int
}

func (r *countingChunkReader) Next(n int) ([]byte, error) {
	r.calls++
	buf, err := r.cr.Next(n)
	if err == nil {
		r.consumed += int64(n)
	}
	return buf, err
}

// buffered returns the number of bytes read from the stream but not yet consumed.
func (r *countingChunkReader) buffered() int64 {
	return r.src.n - r.consumed
}

// ReadResults reads messages until ReadyForQuery and returns one Result per completed statement. A statement that
// failed on the server ends its result; the *PgError is returned together with the results completed before it.
//
// If the stream ends before the first byte of the response, ReadResults returns io.EOF. This allows a capture holding
// several responses to be read until it is exhausted. A stream that ends anywhere inside the response, including
// inside its first message, is reported as io.ErrUnexpectedEOF.
//
// A ParameterStatus that cannot be applied to the scope, such as a client_encoding without a Go codec, does not stop
// the read. The raw value is still recorded by the scope, the failure is logged at warn level and the error is
// returned after ReadyForQuery, so the stream stays positioned at the next response.
//
// If r has a SetDeadline method, as a net.Conn does, a done ctx interrupts a blocked read and ReadResults returns
// ctx.Err(). The stream is not usable after that.
func (rd *Reader) ReadResults(ctx context.Context) ([]*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if conn, ok := rd.r.(setDeadliner); ok {
		w := watchContext(ctx, conn)
		defer w.unwatch()
	}

	var (
		results  []*Result
		current  *Result
		pgErr    *PgError
		paramErr error
	)

	startCalls := rd.cr.calls
	for {
		msg, err := rd.frontend.Receive()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// Only the header read of the first message failed and nothing of it was in the stream.
			if rd.cr.calls == startCalls+1 && rd.cr.buffered() == 0 && errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("receive message: %w", err)
		}

		switch msg := msg.(type) {
		case *pgproto3.RowDescription:
			current = &Result{Fields: make([]Field, len(msg.Fields))}
			for i, fd := range msg.Fields {
				current.Fields[i] = Field{
					Name:        string(fd.Name),
					DataTypeOID: fd.DataTypeOID,
					Format:      pgadapt.Format(fd.Format),
				}
			}

		case *pgproto3.DataRow:
			if current == nil {
				return nil, errors.New("DataRow received without RowDescription")
			}
			if len(msg.Values) != len(current.Fields) {
				return nil, fmt.Errorf("DataRow has %d values but RowDescription has %d fields", len(msg.Values), len(current.Fields))
			}
			// The message is reused by the next Receive.
			row := make([][]byte, len(msg.Values))
			for i, v := range msg.Values {
				row[i] = bytes.Clone(v)
			}
			current.Rows = append(current.Rows, row)

		case *pgproto3.CommandComplete:
			if current == nil {
				current = &Result{}
			}
			current.CommandTag = string(msg.CommandTag)
			results = append(results, current)
			current = nil

		case *pgproto3.EmptyQueryResponse:
			results = append(results, &Result{})
			current = nil

		case *pgproto3.ErrorResponse:
			pgErr = errorResponseToPgError(msg)
			current = nil

		case *pgproto3.NoticeResponse:
			rd.log(pgadapt.LogLevelInfo, "notice", map[string]any{"severity": msg.Severity, "code": msg.Code, "message": msg.Message})

		case *pgproto3.ParameterStatus:
			if rd.scope != nil {
				if err := rd.scope.SetParameter(msg.Name, msg.Value); err != nil {
					rd.log(pgadapt.LogLevelWarn, "cannot apply parameter status", map[string]any{"name": msg.Name, "value": msg.Value, "err": err})
					if paramErr == nil {
						paramErr = fmt.Errorf("parameter status %s=%q: %w", msg.Name, msg.Value, err)
					}
					continue
				}
			}
			rd.log(pgadapt.LogLevelDebug, "parameter status", map[string]any{"name": msg.Name, "value": msg.Value})

		case *pgproto3.ReadyForQuery:
			switch {
			case pgErr != nil && paramErr != nil:
				return results, errors.Join(pgErr, paramErr)
			case pgErr != nil:
				return results, pgErr
			case paramErr != nil:
				return results, paramErr
			}
			return results, nil
		}
	}
}

func (rd *Reader) log(level pgadapt.LogLevel, msg string, data map[string]any) {
	if rd.Logger == nil {
		return
	}
	maxLevel := rd.LogLevel
	if maxLevel == 0 {
		maxLevel = pgadapt.LogLevelInfo
	}
	if maxLevel >= level {
		rd.Logger.Log(level, msg, data)
	}
}
