package worker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ib-77/rowbatch/pkg/batch"
)

var (
	// ErrTransform marks a batch whose transform returned an error.
	ErrTransform = errors.New("transform failed")
	// ErrWorkerPanic marks a batch whose transform panicked.
	ErrWorkerPanic = errors.New("worker panic")
	// ErrCanceled marks a batch that was not completed because the run was cancelled.
	ErrCanceled = errors.New("batch canceled")
	// ErrSink marks a batch its sink refused.
	ErrSink = errors.New("sink failed")
)

// BatchError describes a batch that did not complete.
type BatchError struct {
	Seq     int
	BatchID uuid.UUID
	Offset  int
	Size    int
	// Kind is one of ErrTransform, ErrWorkerPanic, ErrCanceled or ErrSink.
	Kind error
	Err  error
}

func newBatchError[R any](b batch.Batch[R], kind, err error) *BatchError {
	return &BatchError{
		Seq:     b.Seq,
		BatchID: b.ID,
		Offset:  b.Offset,
		Size:    len(b.Records),
		Kind:    kind,
		Err:     err,
	}
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch#%d[%d+%d]: %v: %v", e.Seq, e.Offset, e.Size, e.Kind, e.Err)
}

func (e *BatchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// PanicError carries the value and stack of a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
