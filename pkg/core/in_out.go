package core

import (
	"context"
	"iter"
)

// Send delivers v to ch unless ctx is done first. It reports whether v was sent.
func Send[T any](ctx context.Context, ch chan<- T, v T) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// ToChanFromSeq feeds seq into a new channel which is closed when seq is
// exhausted or ctx is done.
func ToChanFromSeq[T any](ctx context.Context, seq iter.Seq[T]) <-chan T {
	in := make(chan T)

	go func() {
		defer close(in)
		for v := range seq {
			if !Send(ctx, in, v) {
				return
			}
		}
	}()

	return in
}

func ToChanMany[T any](ctx context.Context, values []T) <-chan T {
	return ToChanFromSeq(ctx, func(yield func(T) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	})
}

// FromChanMany drains out until it is closed or ctx is done.
func FromChanMany[T any](ctx context.Context, out <-chan T) []T {
	res := make([]T, 0)
	for {
		select {
		case v, ok := <-out:
			if !ok {
				return res
			}
			res = append(res, v)
		case <-ctx.Done():
			return res
		}
	}
}
