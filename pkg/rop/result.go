package rop

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type state uint8

const (
	stateEmpty state = iota
	stateSuccess
	stateFail
	stateCancel
)

// Result is the outcome of one unit of work: a value, a failure or a cancellation.
type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	state     state
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		result:    r,
		state:     stateSuccess,
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		err:       err,
		state:     stateFail,
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		err:       err,
		state:     stateCancel,
	}
}

// CancelFrom keeps the identity and error of a non-successful result while
// changing its value type.
func CancelFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		id:        from.id,
		createdAt: from.createdAt,
		err:       from.err,
		state:     from.state,
	}
}

// Recover converts a recovered panic value into a failed result.
// wrap may decorate the panic error, it is optional.
func Recover[T any](recovered any, wrap func(error) error) Result[T] {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%v", recovered)
	}
	if wrap != nil {
		err = wrap(err)
	}
	return Fail[T](err)
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.state == stateSuccess
}

func (r Result[T]) IsFailure() bool {
	return r.state == stateFail
}

func (r Result[T]) IsCancel() bool {
	return r.state == stateCancel
}

func (r Result[T]) IsEmpty() bool {
	return r.state == stateEmpty
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}

func (r Result[T]) String() string {
	switch r.state {
	case stateSuccess:
		return fmt.Sprintf("success(%s)", r.id)
	case stateFail:
		return fmt.Sprintf("fail(%s): %v", r.id, r.err)
	case stateCancel:
		return fmt.Sprintf("cancel(%s): %v", r.id, r.err)
	default:
		return "empty"
	}
}
