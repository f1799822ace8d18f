package record

import (
	"maps"
	"slices"
)

// Record is one decoded row keyed by column name. Values are untyped strings.
type Record map[string]string

// Clone returns a shallow copy safe to modify.
func (r Record) Clone() Record {
	return maps.Clone(r)
}

// Keys returns the field names in sorted order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Decoder turns the raw fields of one row into a value of type R.
// Implementations must be pure and safe for concurrent use.
type Decoder[R any] interface {
	Decode(h Header, fields []string) (R, error)
}

// Binder is implemented by decoders that need to check a header once per run
// before any row is decoded.
type Binder interface {
	Bind(h Header) error
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc[R any] func(h Header, fields []string) (R, error)

func (f DecoderFunc[R]) Decode(h Header, fields []string) (R, error) {
	return f(h, fields)
}

// MapDecoder decodes rows into Record.
type MapDecoder struct{}

func (MapDecoder) Decode(h Header, fields []string) (Record, error) {
	return Decode(h, fields)
}

// Decode builds a Record whose key set is exactly the header.
func Decode(h Header, fields []string) (Record, error) {
	if len(fields) != h.Len() {
		return nil, &FieldCountError{Want: h.Len(), Got: len(fields)}
	}
	r := make(Record, len(fields))
	for i, name := range h.names {
		r[name] = fields[i]
	}
	return r, nil
}
