package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/ib-77/rowbatch/pkg/rop"
)

// ErrInvalid is wrapped by failures of Chain.Validate steps.
var ErrInvalid = errors.New("invalid record")

// Chain builds a record pipeline step by step.
type Chain[R any] struct {
	steps []Named[R]
}

func NewChain[R any]() *Chain[R] {
	return &Chain[R]{}
}

// Then appends a stage that may fail.
func (c *Chain[R]) Then(name string, s Stage[R]) *Chain[R] {
	c.steps = append(c.steps, Step(name, s))
	return c
}

// Map appends a pure transformation.
func (c *Chain[R]) Map(name string, fn func(ctx context.Context, r R) R) *Chain[R] {
	return c.Then(name, func(ctx context.Context, r R) (R, error) {
		return fn(ctx, r), nil
	})
}

// Validate appends a check that fails the record with errMsg when it is not valid.
func (c *Chain[R]) Validate(name string, fn func(ctx context.Context, r R) (valid bool, errMsg string)) *Chain[R] {
	return c.Then(name, func(ctx context.Context, r R) (R, error) {
		if valid, msg := fn(ctx, r); !valid {
			return r, fmt.Errorf("%w: %s", ErrInvalid, msg)
		}
		return r, nil
	})
}

// Filter appends a step that drops records for which keep is false.
func (c *Chain[R]) Filter(name string, keep func(ctx context.Context, r R) bool) *Chain[R] {
	return c.Then(name, func(ctx context.Context, r R) (R, error) {
		if !keep(ctx, r) {
			return r, ErrDrop
		}
		return r, nil
	})
}

func (c *Chain[R]) Steps() []Named[R] {
	return append([]Named[R](nil), c.steps...)
}

// Apply runs the chain on one record.
func (c *Chain[R]) Apply(ctx context.Context, r R) rop.Result[R] {
	return apply(ctx, c.steps, r)
}

// Batch returns the chain as a batch transform.
func (c *Chain[R]) Batch() Func[R] {
	return PerRecord(c.Steps()...)
}
