package record

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned by NewStructDecoder for untagged or unsupported targets.
var ErrUnsupportedType = errors.New("unsupported decode target")

type structField struct {
	column string
	index  []int
	kind   reflect.Kind
	bits   int
}

// StructDecoder decodes rows into a struct type T whose exported fields carry
// `csv:"column"` tags. Fields tagged `csv:"-"` or without a tag are ignored.
type StructDecoder[T any] struct {
	fields []structField
}

// NewStructDecoder inspects T once. Supported field kinds are string, bool,
// signed and unsigned integers and floats.
func NewStructDecoder[T any]() (*StructDecoder[T], error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T is not a struct", ErrUnsupportedType, zero)
	}

	d := &StructDecoder[T]{}
	for _, f := range reflect.VisibleFields(typ) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag, ok := f.Tag.Lookup("csv")
		if !ok {
			continue
		}
		column, _, _ := strings.Cut(tag, ",")
		if column == "-" || column == "" {
			continue
		}
		switch f.Type.Kind() {
		case reflect.String, reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
		default:
			return nil, fmt.Errorf("%w: field %s has kind %s", ErrUnsupportedType, f.Name, f.Type.Kind())
		}
		sf := structField{column: column, index: f.Index, kind: f.Type.Kind()}
		if sf.kind != reflect.String && sf.kind != reflect.Bool {
			sf.bits = f.Type.Bits()
		}
		d.fields = append(d.fields, sf)
	}
	if len(d.fields) == 0 {
		return nil, fmt.Errorf("%w: %T has no csv tags", ErrUnsupportedType, zero)
	}
	return d, nil
}

// MustStructDecoder panics when T is not decodable.
func MustStructDecoder[T any]() *StructDecoder[T] {
	d, err := NewStructDecoder[T]()
	if err != nil {
		panic(err)
	}
	return d
}

// Bind reports tagged columns that the header does not provide.
func (d *StructDecoder[T]) Bind(h Header) error {
	var missing []string
	for _, f := range d.fields {
		if !h.Has(f.column) {
			missing = append(missing, f.column)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: columns %s not found in header %q", ErrHeaderMissing, strings.Join(missing, ","), h.String())
	}
	return nil
}

func (d *StructDecoder[T]) Decode(h Header, fields []string) (T, error) {
	var out T
	if len(fields) != h.Len() {
		return out, &FieldCountError{Want: h.Len(), Got: len(fields)}
	}

	v := reflect.ValueOf(&out).Elem()
	for _, f := range d.fields {
		i := h.Index(f.column)
		if i < 0 {
			return out, fmt.Errorf("%w: column %q", ErrHeaderMissing, f.column)
		}
		if err := setField(v.FieldByIndex(f.index), f, fields[i]); err != nil {
			return out, err
		}
	}
	return out, nil
}

func setField(dst reflect.Value, f structField, raw string) error {
	s := strings.TrimSpace(raw)
	switch f.kind {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return convErr(f, raw, err)
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, f.bits)
		if err != nil {
			return convErr(f, raw, err)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, f.bits)
		if err != nil {
			return convErr(f, raw, err)
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, f.bits)
		if err != nil {
			return convErr(f, raw, err)
		}
		dst.SetFloat(n)
	}
	return nil
}

func convErr(f structField, raw string, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	return &ConversionError{Field: f.column, Value: raw, Kind: f.kind.String(), Err: err}
}
