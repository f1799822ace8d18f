package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/ib-77/rowbatch/pkg/rop"
	"github.com/ib-77/rowbatch/pkg/worker"
)

// Report describes a finished run.
type Report[R any] struct {
	RunID  uuid.UUID
	Path   string
	Header record.Header
	// Records is the aggregate. It is nil for streamed runs.
	Records []R
	// Rows counts decoded rows.
	Rows int
	// Batches counts batches handed to workers.
	Batches   int
	Succeeded int
	Canceled  int
	// Failures holds every batch that did not complete, cancelled ones included.
	Failures  []*worker.BatchError
	RowErrors []*record.RowError
	Duration  time.Duration
	State     State
}

// Err joins every collected batch and row error.
func (r *Report[R]) Err() error {
	return errors.Join(rop.JoinErrors(r.Failures), rop.JoinErrors(r.RowErrors))
}

func (r *Report[R]) Len() int {
	return len(r.Records)
}

func (r *Report[R]) String() string {
	return fmt.Sprintf("run %s: %d rows, %d batches (%d ok, %d failed, %d canceled), %d row errors in %s",
		r.RunID, r.Rows, r.Batches, r.Succeeded, len(r.Failures)-r.Canceled, r.Canceled, len(r.RowErrors), r.Duration)
}
