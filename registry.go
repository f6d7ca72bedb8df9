package pgadapt

import (
	"reflect"
)

// TypeKey identifies an encoder: the dynamic Go type of the values it accepts and the format it produces.
type TypeKey struct {
	Type   reflect.Type
	Format Format
}

// OIDKey identifies a decoder: the PostgreSQL type oid and the format of the data it accepts.
type OIDKey struct {
	OID    uint32
	Format Format
}

// Registry holds the encoders and decoders registered for one scope. Keys are unique and a later registration
// replaces an earlier one.
//
// A Registry is not safe for concurrent modification. Registration is expected to happen before the Registry is
// used by Transformers.
type Registry struct {
	encoders map[TypeKey]Encoder
	decoders map[OIDKey]Decoder
}

func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[TypeKey]Encoder),
		decoders: make(map[OIDKey]Decoder),
	}
}

// Encoder returns the encoder registered for key in this registry only.
func (r *Registry) Encoder(key TypeKey) (Encoder, bool) {
	enc, ok := r.encoders[key]
	return enc, ok
}

// Decoder returns the decoder registered for key in this registry only.
func (r *Registry) Decoder(key OIDKey) (Decoder, bool) {
	dec, ok := r.decoders[key]
	return dec, ok
}

// RemoveEncoder deletes the encoder registered for key, if any.
func (r *Registry) RemoveEncoder(key TypeKey) {
	delete(r.encoders, key)
}

// RemoveDecoder deletes the decoder registered for key, if any.
func (r *Registry) RemoveDecoder(key OIDKey) {
	delete(r.decoders, key)
}

// EncoderKeys returns the keys of all encoders in this registry in no particular order.
func (r *Registry) EncoderKeys() []TypeKey {
	keys := make([]TypeKey, 0, len(r.encoders))
	for k := range r.encoders {
		keys = append(keys, k)
	}
	return keys
}

// DecoderKeys returns the keys of all decoders in this registry in no particular order.
func (r *Registry) DecoderKeys() []OIDKey {
	keys := make([]OIDKey, 0, len(r.decoders))
	for k := range r.decoders {
		keys = append(keys, k)
	}
	return keys
}

func (r *Registry) setEncoder(key TypeKey, enc Encoder) (replaced bool) {
	_, replaced = r.encoders[key]
	r.encoders[key] = enc
	return replaced
}

func (r *Registry) setDecoder(key OIDKey, dec Decoder) (replaced bool) {
	_, replaced = r.decoders[key]
	r.decoders[key] = dec
	return replaced
}
