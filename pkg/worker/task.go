package worker

import (
	"context"
	"runtime/debug"

	"github.com/ib-77/rowbatch/pkg/batch"
	"github.com/ib-77/rowbatch/pkg/rop"
	"github.com/ib-77/rowbatch/pkg/transform"
)

// Sink receives every batch a Task completed.
type Sink[R any] func(ctx context.Context, b batch.Batch[R]) error

// Task transforms one batch and hands the output to its sink. The input
// batch is never modified.
type Task[R any] struct {
	Transform transform.Func[R]
	Sink      Sink[R]
}

// Execute never panics. Every failure comes back as a *BatchError inside
// the result: a failed result for transform, panic and sink errors, a
// cancelled result when ctx ends the batch.
func (t Task[R]) Execute(ctx context.Context, b batch.Batch[R]) (res rop.Result[batch.Batch[R]]) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			res = rop.Recover[batch.Batch[R]](rec, func(error) error {
				return newBatchError(b, ErrWorkerPanic, &PanicError{Value: rec, Stack: stack})
			})
		}
	}()

	if ctx.Err() != nil {
		return Cancelled(ctx, b)
	}

	fn := t.Transform
	if fn == nil {
		fn = transform.Identity[R]()
	}

	out := rop.Try(ctx, rop.Success(b), func(ctx context.Context, in batch.Batch[R]) (batch.Batch[R], error) {
		return fn(ctx, in)
	})
	switch {
	case out.IsCancel():
		return rop.Cancel[batch.Batch[R]](newBatchError(b, ErrCanceled, out.Err()))
	case !out.IsSuccess():
		return rop.Fail[batch.Batch[R]](newBatchError(b, ErrTransform, out.Err()))
	}

	if t.Sink == nil {
		return out
	}
	return rop.Switch(ctx, out, func(ctx context.Context, done batch.Batch[R]) rop.Result[batch.Batch[R]] {
		if err := t.Sink(ctx, done); err != nil {
			return rop.Fail[batch.Batch[R]](newBatchError(b, ErrSink, err))
		}
		return rop.Success(done)
	})
}

// Cancelled reports b as not started because ctx is done.
func Cancelled[R any](ctx context.Context, b batch.Batch[R]) rop.Result[batch.Batch[R]] {
	cause := context.Cause(ctx)
	if cause == nil {
		cause = context.Canceled
	}
	return rop.Cancel[batch.Batch[R]](newBatchError(b, ErrCanceled, cause))
}
