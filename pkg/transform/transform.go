package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/ib-77/rowbatch/pkg/batch"
	"github.com/ib-77/rowbatch/pkg/rop"
)

// ErrDrop is returned by a stage to remove a record from its batch without
// failing the batch.
var ErrDrop = errors.New("record dropped")

// Func transforms a whole batch. It must not modify its input; the batch it
// returns keeps the input's identity.
type Func[R any] func(ctx context.Context, b batch.Batch[R]) (batch.Batch[R], error)

// Stage transforms a single record.
type Stage[R any] func(ctx context.Context, r R) (R, error)

// Named is a stage with the name used in its errors.
type Named[R any] struct {
	Name  string
	Stage Stage[R]
}

func Step[R any](name string, s Stage[R]) Named[R] {
	return Named[R]{Name: name, Stage: s}
}

// RecordError reports the record and stage that failed a batch.
type RecordError struct {
	// Offset is the record's position in the whole run.
	Offset int
	Stage  string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %s: %v", e.Offset, e.Stage, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Identity returns every batch unchanged.
func Identity[R any]() Func[R] {
	return func(_ context.Context, b batch.Batch[R]) (batch.Batch[R], error) {
		return b, nil
	}
}

// Compose runs fns in order, feeding each the previous output.
func Compose[R any](fns ...Func[R]) Func[R] {
	return func(ctx context.Context, b batch.Batch[R]) (batch.Batch[R], error) {
		var err error
		for _, fn := range fns {
			if b, err = fn(ctx, b); err != nil {
				return b, err
			}
		}
		return b, nil
	}
}

// PerRecord lifts record stages into a batch transform. The context is
// checked before each record. A record whose stage returns ErrDrop is left
// out; any other error fails the batch with a *RecordError.
func PerRecord[R any](stages ...Named[R]) Func[R] {
	return func(ctx context.Context, b batch.Batch[R]) (batch.Batch[R], error) {
		out := make([]R, 0, len(b.Records))
		for i, r := range b.Records {
			if err := ctx.Err(); err != nil {
				return b, err
			}

			res := apply(ctx, stages, r)
			switch {
			case res.IsSuccess():
				out = append(out, res.Result())
			case errors.Is(res.Err(), ErrDrop):
			case res.IsCancel():
				return b, res.Err()
			default:
				err := res.Err()
				var re *RecordError
				if errors.As(err, &re) {
					re.Offset = b.Offset + i
				}
				return b, err
			}
		}
		return b.WithRecords(out), nil
	}
}

func apply[R any](ctx context.Context, stages []Named[R], r R) rop.Result[R] {
	res := rop.Success(r)
	for _, s := range stages {
		res = rop.Try(ctx, res, func(ctx context.Context, in R) (R, error) {
			out, err := s.Stage(ctx, in)
			if err != nil {
				return out, &RecordError{Stage: s.Name, Err: err}
			}
			return out, nil
		})
		if !res.IsSuccess() {
			return res
		}
	}
	return res
}
