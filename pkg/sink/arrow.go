package sink

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/ib-77/rowbatch/pkg/record"
)

// Arrow writes an Arrow IPC stream with one record batch per Write and one
// nullable string column per column.
type Arrow struct {
	w       *ipc.Writer
	schema  *arrow.Schema
	columns []string
	mem     memory.Allocator
	closed  bool
}

func ArrowSchema(columns []string) (*arrow.Schema, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		fields[i] = arrow.Field{Name: col, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

func NewArrow(w io.Writer, columns []string) (*Arrow, error) {
	schema, err := ArrowSchema(columns)
	if err != nil {
		return nil, err
	}
	mem := memory.DefaultAllocator
	return &Arrow{
		w:       ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem)),
		schema:  schema,
		columns: columns,
		mem:     mem,
	}, nil
}

func (a *Arrow) Write(records []record.Record) error {
	if a.closed {
		return ErrClosed
	}
	if len(records) == 0 {
		return nil
	}

	b := array.NewRecordBuilder(a.mem, a.schema)
	defer b.Release()

	for i, col := range a.columns {
		sb := b.Field(i).(*array.StringBuilder)
		sb.Reserve(len(records))
		for _, r := range records {
			if v, ok := r[col]; ok {
				sb.Append(v)
			} else {
				sb.AppendNull()
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()
	return a.w.Write(rec)
}

func (a *Arrow) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.w.Close()
}
