package aggregate

import (
	"context"
	"sync"

	"github.com/ib-77/rowbatch/pkg/batch"
)

// Serial calls fn for one batch at a time no matter how many workers
// deliver concurrently. After the first error fn is no longer called and
// the error is returned to every later caller.
type Serial[R any] struct {
	mu  sync.Mutex
	fn  func(ctx context.Context, b batch.Batch[R]) error
	n   int
	err error
}

func NewSerial[R any](fn func(ctx context.Context, b batch.Batch[R]) error) *Serial[R] {
	return &Serial[R]{fn: fn}
}

func (s *Serial[R]) Deliver(ctx context.Context, b batch.Batch[R]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if err := s.fn(ctx, b); err != nil {
		s.err = err
		return err
	}
	s.n++
	return nil
}

// Delivered returns the number of batches fn accepted.
func (s *Serial[R]) Delivered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func (s *Serial[R]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
