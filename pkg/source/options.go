package source

import "fmt"

// Options configures how a source file is read.
type Options struct {
	Comma            rune
	Comment          rune
	LazyQuotes       bool
	TrimLeadingSpace bool
	// Mmap reads the file through a read-only memory mapping.
	Mmap bool
}

// Option is a functional option for Open.
type Option func(*Options)

func DefaultOptions() Options {
	return Options{Comma: ','}
}

func WithDelimiter(r rune) Option {
	return func(o *Options) {
		o.Comma = r
	}
}

func WithComment(r rune) Option {
	return func(o *Options) {
		o.Comment = r
	}
}

func WithLazyQuotes(enabled bool) Option {
	return func(o *Options) {
		o.LazyQuotes = enabled
	}
}

func WithTrimLeadingSpace(enabled bool) Option {
	return func(o *Options) {
		o.TrimLeadingSpace = enabled
	}
}

func WithMmap(enabled bool) Option {
	return func(o *Options) {
		o.Mmap = enabled
	}
}

func applyOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) validate() error {
	if !validRune(o.Comma) {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, o.Comma)
	}
	if o.Comment != 0 && (!validRune(o.Comment) || o.Comment == o.Comma) {
		return fmt.Errorf("%w: comment %q", ErrInvalidDelimiter, o.Comment)
	}
	return nil
}
