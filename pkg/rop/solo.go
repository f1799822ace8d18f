package rop

import "context"

// Try runs onTryExecute on a successful input and converts its error into a
// failure. Cancellation errors become cancelled results.
func Try[In, Out any](ctx context.Context, input Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error)) Result[Out] {

	if !input.IsSuccess() {
		return CancelFrom[In, Out](input)
	}

	out, err := onTryExecute(ctx, input.Result())
	if err != nil {
		if IsCancellationError(err) {
			return Cancel[Out](err)
		}
		return Fail[Out](err)
	}
	return Success(out)
}

func Switch[In, Out any](ctx context.Context, input Result[In],
	onSuccess func(ctx context.Context, r In) Result[Out]) Result[Out] {

	if input.IsSuccess() {
		return onSuccess(ctx, input.Result())
	}
	return CancelFrom[In, Out](input)
}

func Map[In, Out any](ctx context.Context, input Result[In],
	onSuccess func(ctx context.Context, r In) Out) Result[Out] {

	if input.IsSuccess() {
		return Success(onSuccess(ctx, input.Result()))
	}
	return CancelFrom[In, Out](input)
}

func Finally[In, Out any](ctx context.Context, input Result[In],
	onSuccess func(ctx context.Context, r In) Out,
	onError func(ctx context.Context, err error) Out,
	onCancel func(ctx context.Context, err error) Out) Out {

	switch {
	case input.IsSuccess():
		return onSuccess(ctx, input.Result())
	case input.IsCancel():
		return onCancel(ctx, input.Err())
	default:
		return onError(ctx, input.Err())
	}
}
