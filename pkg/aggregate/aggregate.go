package aggregate

import (
	"slices"
	"sync"

	"github.com/ib-77/rowbatch/pkg/batch"
)

// Aggregator merges successful batches from concurrent workers. Append is
// the only operation workers use; it is atomic per batch.
type Aggregator[R any] struct {
	mu      sync.Mutex
	batches []batch.Batch[R]
	count   int
}

func New[R any]() *Aggregator[R] {
	return &Aggregator[R]{}
}

// Append adds every record of b. No other Append interleaves with it.
func (a *Aggregator[R]) Append(b batch.Batch[R]) {
	a.mu.Lock()
	a.batches = append(a.batches, b)
	a.count += len(b.Records)
	a.mu.Unlock()
}

// Len returns the number of records appended so far.
func (a *Aggregator[R]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Batches returns the appended batches in completion order.
func (a *Aggregator[R]) Batches() []batch.Batch[R] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.batches)
}

// Records returns all records, batch by batch, in completion order.
func (a *Aggregator[R]) Records() []R {
	return flatten(a.Batches(), a.Len())
}

// Ordered returns all records in batch sequence order, which is the order
// they were read in.
func (a *Aggregator[R]) Ordered() []R {
	bs := a.Batches()
	slices.SortFunc(bs, func(x, y batch.Batch[R]) int {
		return x.Seq - y.Seq
	})
	return flatten(bs, a.Len())
}

func flatten[R any](bs []batch.Batch[R], n int) []R {
	out := make([]R, 0, n)
	for _, b := range bs {
		out = append(out, b.Records...)
	}
	return out
}
