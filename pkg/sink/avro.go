package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/hamba/avro/v2"
	"github.com/hamba/avro/v2/ocf"
	"github.com/ib-77/rowbatch/pkg/record"
)

// AvroRecordName is the name of the record type in the file schema.
const AvroRecordName = "Row"

// Avro writes an Avro object container file whose records have one string
// field per column.
type Avro struct {
	enc     *ocf.Encoder
	columns []string
	fields  []string
	closed  bool
}

type avroField struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default string `json:"default"`
	Doc     string `json:"doc,omitempty"`
}

type avroRecord struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

// AvroSchema builds the record schema for columns and returns it with the
// field name chosen for each column.
func AvroSchema(columns []string) (avro.Schema, []string, error) {
	if len(columns) == 0 {
		return nil, nil, ErrNoColumns
	}
	names := avroNames(columns)
	rec := avroRecord{Type: "record", Name: AvroRecordName}
	for i, name := range names {
		f := avroField{Name: name, Type: "string"}
		if name != columns[i] {
			f.Doc = columns[i]
		}
		rec.Fields = append(rec.Fields, f)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, nil, err
	}
	schema, err := avro.Parse(string(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("avro schema: %w", err)
	}
	return schema, names, nil
}

func NewAvro(w io.Writer, columns []string) (*Avro, error) {
	schema, names, err := AvroSchema(columns)
	if err != nil {
		return nil, err
	}
	enc, err := ocf.NewEncoder(schema.String(), w)
	if err != nil {
		return nil, fmt.Errorf("avro encoder: %w", err)
	}
	return &Avro{enc: enc, columns: columns, fields: names}, nil
}

func (a *Avro) Write(records []record.Record) error {
	if a.closed {
		return ErrClosed
	}
	for _, r := range records {
		row := make(map[string]any, len(a.columns))
		for i, col := range a.columns {
			row[a.fields[i]] = r[col]
		}
		if err := a.enc.Encode(row); err != nil {
			return err
		}
	}
	return a.enc.Flush()
}

func (a *Avro) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.enc.Close()
}

// avroNames maps columns to valid, unique Avro field names.
func avroNames(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	out := make([]string, len(columns))
	for i, col := range columns {
		name := sanitize(col)
		base := name
		for n := 2; seen[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

func sanitize(s string) string {
	b := []byte(s)
	out := make([]byte, 0, len(b)+1)
	for _, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			out = append(out, c)
		case c >= '0' && c <= '9':
			if len(out) == 0 {
				out = append(out, '_')
			}
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}
