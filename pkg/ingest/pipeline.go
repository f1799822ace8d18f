package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ib-77/rowbatch/pkg/aggregate"
	"github.com/ib-77/rowbatch/pkg/batch"
	"github.com/ib-77/rowbatch/pkg/core"
	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/ib-77/rowbatch/pkg/rop"
	"github.com/ib-77/rowbatch/pkg/source"
	"github.com/ib-77/rowbatch/pkg/transform"
	"github.com/ib-77/rowbatch/pkg/worker"
	"golang.org/x/sync/errgroup"
)

// Pipeline reads a delimited file, decodes its rows into R, groups them
// into batches and transforms the batches in parallel. A Pipeline holds no
// run state and can be run any number of times, also concurrently.
type Pipeline[R any] struct {
	decoder   record.Decoder[R]
	transform transform.Func[R]
	cfg       config
}

// New builds a pipeline. A nil transform passes batches through unchanged.
func New[R any](decoder record.Decoder[R], fn transform.Func[R], opts ...Option) (*Pipeline[R], error) {
	if decoder == nil {
		return nil, ErrNilDecoder
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", batch.ErrInvalidSize, cfg.batchSize)
	}
	if fn == nil {
		fn = transform.Identity[R]()
	}
	return &Pipeline[R]{decoder: decoder, transform: fn, cfg: cfg}, nil
}

// NewMap builds a pipeline over untyped records.
func NewMap(fn transform.Func[record.Record], opts ...Option) (*Pipeline[record.Record], error) {
	return New[record.Record](record.MapDecoder{}, fn, opts...)
}

// Run processes path and returns every successfully transformed record in
// the report. The error is non-nil when the run could not start, was
// aborted or was cancelled; collected failures are in the report.
func (p *Pipeline[R]) Run(ctx context.Context, path string) (*Report[R], error) {
	agg := aggregate.New[R]()
	rep, err := p.execute(ctx, path, func(_ context.Context, b batch.Batch[R]) error {
		agg.Append(b)
		return nil
	})
	if p.cfg.ordered {
		rep.Records = agg.Ordered()
	} else {
		rep.Records = agg.Records()
	}
	return rep, err
}

// Stream processes path and calls fn once for every successful batch.
// Calls never overlap. Nothing is retained, so the report carries no
// records. An error from fn aborts the run.
func (p *Pipeline[R]) Stream(ctx context.Context, path string, fn func(ctx context.Context, b batch.Batch[R]) error) (*Report[R], error) {
	serial := aggregate.NewSerial(fn)
	return p.execute(ctx, path, serial.Deliver)
}

type run[R any] struct {
	p      *Pipeline[R]
	rep    *Report[R]
	logger *slog.Logger
	states *stateMachine
}

func (p *Pipeline[R]) execute(ctx context.Context, path string, sink worker.Sink[R]) (*Report[R], error) {
	start := time.Now()
	rep := &Report[R]{RunID: uuid.New(), Path: path}
	logger := p.cfg.logger.With("component", "ingest", "run_id", rep.RunID.String())
	r := &run[R]{p: p, rep: rep, logger: logger, states: newStateMachine(logger)}

	err := r.execute(ctx, path, sink)

	r.states.advance(StateDone)
	rep.State = r.states.current()
	rep.Duration = time.Since(start)

	if err != nil {
		logger.Warn("run failed", "path", path, "error", err)
	} else {
		logger.Debug("run finished", "rows", rep.Rows, "batches", rep.Batches,
			"failed", len(rep.Failures), "row_errors", len(rep.RowErrors), "duration", rep.Duration)
	}
	return rep, err
}

func (r *run[R]) execute(ctx context.Context, path string, sink worker.Sink[R]) error {
	cfg := r.p.cfg

	r.states.advance(StateReading)
	src, err := source.Open(path, cfg.sourceOpts...)
	if err != nil {
		return err
	}
	defer src.Close()

	header := src.Header()
	r.rep.Header = header
	if missing := header.Missing(cfg.required...); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrHeaderMissing, strings.Join(missing, ","))
	}
	if b, ok := r.p.decoder.(record.Binder); ok {
		if err := b.Bind(header); err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	lines := core.Lines(core.GetWorkerMaxCount(ctx, cfg.workers))
	r.logger.Debug("dispatching", "path", path, "columns", header.Len(), "batch_size", cfg.batchSize,
		"workers", lines, "policy", cfg.policy.String())

	r.states.advance(StateBatching)

	batches := make(chan batch.Batch[R])
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer close(batches)
		defer r.states.advance(StateWaiting)
		return r.read(gctx, src, batches)
	})

	task := worker.Task[R]{Transform: r.p.transform, Sink: sink}
	results := core.Run(gctx, batches, task.Execute, core.ReportCancelled(worker.Cancelled[R]), lines)

	for res := range results {
		r.collect(res, cancel)
	}

	err = g.Wait()
	if err == nil {
		err = context.Cause(runCtx)
	}
	return err
}

func (r *run[R]) collect(res rop.WithCancel[batch.Batch[R]], abort context.CancelCauseFunc) {
	if res.IsSuccess() {
		r.rep.Succeeded++
		return
	}

	var be *worker.BatchError
	if !errors.As(res.Err(), &be) {
		be = &worker.BatchError{Kind: worker.ErrTransform, Err: res.Err()}
	}
	r.rep.Failures = append(r.rep.Failures, be)

	if res.IsCancel() {
		r.rep.Canceled++
		return
	}

	r.logger.Warn("batch failed", "seq", be.Seq, "offset", be.Offset, "size", be.Size, "error", be.Err)
	if r.p.cfg.policy == PolicyAbort || errors.Is(be, worker.ErrSink) {
		abort(&AbortError{Err: be})
	}
}

// read decodes rows and sends full batches to out. It runs on a single
// goroutine and owns the report's row counters until it returns.
func (r *run[R]) read(ctx context.Context, src *source.File, out chan<- batch.Batch[R]) error {
	cfg := r.p.cfg
	header := src.Header()
	batcher, err := batch.NewBatcher[R](cfg.batchSize)
	if err != nil {
		return err
	}

	send := func(b batch.Batch[R]) error {
		if !core.Send(ctx, out, b) {
			return context.Cause(ctx)
		}
		r.rep.Batches++
		r.states.advance(StateDispatching)
		return nil
	}

	for row, err := range src.Rows() {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}

		if err == nil {
			var rec R
			if rec, err = r.p.decoder.Decode(header, row.Fields); err == nil {
				r.rep.Rows++
				if full, ok := batcher.Add(rec); ok {
					if err := send(full); err != nil {
						return err
					}
				}
				continue
			}
			err = &record.RowError{Line: row.Line, Err: err}
		}

		var rowErr *record.RowError
		if !errors.As(err, &rowErr) {
			return err
		}
		r.rep.RowErrors = append(r.rep.RowErrors, rowErr)
		r.logger.Debug("row skipped", "line", rowErr.Line, "error", rowErr.Err)

		if cfg.policy == PolicyAbort {
			return &AbortError{Err: rowErr}
		}
		if cfg.maxRowErrors > 0 && len(r.rep.RowErrors) > cfg.maxRowErrors {
			return &AbortError{Err: fmt.Errorf("%w: %d", ErrTooManyRowErrors, len(r.rep.RowErrors))}
		}
	}

	if tail, ok := batcher.Flush(); ok {
		return send(tail)
	}
	return nil
}
