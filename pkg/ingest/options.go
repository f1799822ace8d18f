package ingest

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ib-77/rowbatch/pkg/core"
	"github.com/ib-77/rowbatch/pkg/source"
)

// DefaultBatchSize is the batch capacity used when none is configured.
const DefaultBatchSize = 1000

// Unbounded starts one worker per batch instead of a fixed pool.
const Unbounded = core.Unbounded

// Policy decides what a run does with malformed rows and failed batches.
type Policy int

const (
	// PolicyCollect skips malformed rows and failed batches and reports them.
	PolicyCollect Policy = iota
	// PolicyAbort stops the run at the first malformed row or failed batch.
	PolicyAbort
)

func (p Policy) String() string {
	switch p {
	case PolicyCollect:
		return "collect"
	case PolicyAbort:
		return "abort"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "collect":
		return PolicyCollect, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return PolicyCollect, fmt.Errorf("unknown error policy %q", s)
	}
}

type config struct {
	batchSize    int
	workers      int
	policy       Policy
	maxRowErrors int
	ordered      bool
	required     []string
	sourceOpts   []source.Option
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
}

type Option func(*config)

// WithBatchSize sets the number of records per batch. It must be positive.
func WithBatchSize(n int) Option {
	return func(c *config) {
		c.batchSize = n
	}
}

// WithWorkers sets the number of worker lines. 0 uses GOMAXPROCS and
// Unbounded starts one worker per batch. core.WithWorkerOptions on the run
// context takes precedence.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

func WithPolicy(p Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithMaxRowErrors aborts a collecting run once more than n rows failed.
// 0 means no limit.
func WithMaxRowErrors(n int) Option {
	return func(c *config) {
		c.maxRowErrors = n
	}
}

// WithOrdered returns Run records in the order they were read.
func WithOrdered(ordered bool) Option {
	return func(c *config) {
		c.ordered = ordered
	}
}

// WithRequiredColumns fails a run whose header lacks any of names.
func WithRequiredColumns(names ...string) Option {
	return func(c *config) {
		c.required = append(c.required, names...)
	}
}

func WithSourceOptions(opts ...source.Option) Option {
	return func(c *config) {
		c.sourceOpts = append(c.sourceOpts, opts...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
