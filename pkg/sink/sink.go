package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ib-77/rowbatch/pkg/batch"
	"github.com/ib-77/rowbatch/pkg/record"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrNoColumns     = errors.New("output needs at least one column")
	ErrClosed        = errors.New("writer is closed")
)

type Format string

const (
	FormatNDJSON Format = "ndjson"
	FormatAvro   Format = "avro"
	FormatArrow  Format = "arrow"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatNDJSON, FormatAvro, FormatArrow:
		return f, nil
	case "", "json":
		return FormatNDJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Writer encodes batches of records. Writers are not safe for concurrent
// use; wrap them with aggregate.Serial or use Batches.
type Writer interface {
	Write(records []record.Record) error
	// Close flushes buffered output. It does not close the underlying io.Writer.
	Close() error
}

// New returns a writer for format. Columns fix the output schema of the
// Avro and Arrow writers; absent values are written as empty strings or
// nulls respectively.
func New(format Format, w io.Writer, columns []string) (Writer, error) {
	switch format {
	case FormatNDJSON:
		return NewNDJSON(w), nil
	case FormatAvro:
		return NewAvro(w, columns)
	case FormatArrow:
		return NewArrow(w, columns)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Batches adapts w to a batch callback, converting each record first.
func Batches[R any](w Writer, convert func(R) record.Record) func(ctx context.Context, b batch.Batch[R]) error {
	return func(ctx context.Context, b batch.Batch[R]) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := make([]record.Record, 0, len(b.Records))
		for _, r := range b.Records {
			out = append(out, convert(r))
		}
		if err := w.Write(out); err != nil {
			return fmt.Errorf("writing %s: %w", b, err)
		}
		return nil
	}
}
