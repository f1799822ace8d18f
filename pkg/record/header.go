package record

import (
	"fmt"
	"strings"
)

// Header is the ordered, immutable list of column names of one source.
type Header struct {
	names []string
	index map[string]int
}

// ParseHeader validates raw header fields. Names are trimmed; blank and
// duplicate names are rejected.
func ParseHeader(fields []string) (Header, error) {
	if len(fields) == 0 {
		return Header{}, ErrEmptyHeader
	}

	names := make([]string, len(fields))
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimSpace(strings.TrimPrefix(f, "\ufeff"))
		if name == "" {
			return Header{}, fmt.Errorf("%w: column %d has no name", ErrEmptyHeader, i+1)
		}
		if prev, ok := index[name]; ok {
			return Header{}, fmt.Errorf("%w: %q at columns %d and %d", ErrDuplicateColumn, name, prev+1, i+1)
		}
		names[i] = name
		index[name] = i
	}

	return Header{names: names, index: index}, nil
}

// MustHeader is ParseHeader for literals in tests and examples.
func MustHeader(names ...string) Header {
	h, err := ParseHeader(names)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Header) Len() int {
	return len(h.names)
}

// Names returns a copy of the column names.
func (h Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Index returns the position of name or -1.
func (h Header) Index(name string) int {
	if i, ok := h.index[name]; ok {
		return i
	}
	return -1
}

func (h Header) Has(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Missing returns the names in required that the header does not have.
func (h Header) Missing(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !h.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func (h Header) String() string {
	return strings.Join(h.names, ",")
}
