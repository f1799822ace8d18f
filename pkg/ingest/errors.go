package ingest

import (
	"errors"
	"fmt"

	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/ib-77/rowbatch/pkg/source"
)

var (
	ErrSourceNotFound     = source.ErrSourceNotFound
	ErrHeaderMissing      = record.ErrHeaderMissing
	ErrEmptyHeader        = record.ErrEmptyHeader
	ErrFieldCountMismatch = record.ErrFieldCountMismatch
	ErrTypeConversion     = record.ErrTypeConversion

	// ErrTooManyRowErrors is the cause of a run that exceeded its row error limit.
	ErrTooManyRowErrors = errors.New("too many row errors")
	// ErrNilDecoder is returned by New without a decoder.
	ErrNilDecoder = errors.New("decoder is nil")
)

// AbortError is returned by a run that stopped early because of Err.
type AbortError struct {
	Err error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("run aborted: %v", e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}
