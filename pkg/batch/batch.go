package batch

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidSize is returned for a batch capacity that is not positive.
var ErrInvalidSize = errors.New("batch size must be positive")

// Batch is an ordered group of records processed as a unit by one worker.
// A batch handed to a worker is never modified; transforms return a new one.
type Batch[R any] struct {
	ID uuid.UUID
	// Seq is the 0-based emission index within a run.
	Seq int
	// Offset is the number of records emitted before this batch.
	Offset    int
	Records   []R
	CreatedAt time.Time
}

func (b Batch[R]) Len() int {
	return len(b.Records)
}

// WithRecords returns a batch with the same identity and new records.
func (b Batch[R]) WithRecords(records []R) Batch[R] {
	b.Records = records
	return b
}

func (b Batch[R]) String() string {
	return fmt.Sprintf("batch#%d[%d+%d]", b.Seq, b.Offset, len(b.Records))
}

// Batcher groups a sequential stream of records into fixed-size batches.
// It is not safe for concurrent use; one goroutine feeds it.
type Batcher[R any] struct {
	size    int
	seq     int
	offset  int
	pending []R
}

func NewBatcher[R any](size int) (*Batcher[R], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Batcher[R]{size: size, pending: make([]R, 0, size)}, nil
}

func (b *Batcher[R]) Size() int {
	return b.size
}

// Emitted returns the number of batches produced so far.
func (b *Batcher[R]) Emitted() int {
	return b.seq
}

// Add appends r and returns a full batch once capacity is reached.
func (b *Batcher[R]) Add(r R) (Batch[R], bool) {
	b.pending = append(b.pending, r)
	if len(b.pending) < b.size {
		return Batch[R]{}, false
	}
	return b.emit(), true
}

// Flush returns the partial tail, if any.
func (b *Batcher[R]) Flush() (Batch[R], bool) {
	if len(b.pending) == 0 {
		return Batch[R]{}, false
	}
	return b.emit(), true
}

func (b *Batcher[R]) emit() Batch[R] {
	out := Batch[R]{
		ID:        uuid.New(),
		Seq:       b.seq,
		Offset:    b.offset,
		Records:   b.pending,
		CreatedAt: time.Now().UTC(),
	}
	b.seq++
	b.offset += len(b.pending)
	b.pending = make([]R, 0, b.size)
	return out
}

// Chunk lazily groups seq into batches of size n. It panics if n <= 0.
func Chunk[R any](seq iter.Seq[R], n int) iter.Seq[Batch[R]] {
	if n <= 0 {
		panic(fmt.Errorf("%w: %d", ErrInvalidSize, n))
	}
	return func(yield func(Batch[R]) bool) {
		b, _ := NewBatcher[R](n)
		for r := range seq {
			if full, ok := b.Add(r); ok {
				if !yield(full) {
					return
				}
			}
		}
		if tail, ok := b.Flush(); ok {
			yield(tail)
		}
	}
}

// Split partitions records into batches of size n.
func Split[R any](records []R, n int) ([]Batch[R], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	out := make([]Batch[R], 0, (len(records)+n-1)/n)
	for b := range Chunk(func(yield func(R) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}, n) {
		out = append(out, b)
	}
	return out, nil
}
