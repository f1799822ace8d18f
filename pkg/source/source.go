package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"
	"github.com/ib-77/rowbatch/pkg/record"
)

var (
	// ErrSourceNotFound is returned when the source path cannot be opened.
	ErrSourceNotFound = errors.New("source not found")
	// ErrInvalidDelimiter is returned for a delimiter or comment rune the csv reader rejects.
	ErrInvalidDelimiter = errors.New("invalid delimiter")
)

// PathError wraps the open failure of a source path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrSourceNotFound, e.Path, e.Err)
}

func (e *PathError) Unwrap() []error {
	return []error{ErrSourceNotFound, e.Err}
}

// Row is one raw data row and the line it started on.
type Row struct {
	Line   int
	Fields []string
}

// File is an open delimited source whose header has been parsed.
type File struct {
	path   string
	file   *os.File
	mapped mmap.MMap
	reader *csv.Reader
	header record.Header
}

// Open opens path, parses its first line as the header and positions the
// reader on the first data row.
func Open(path string, opts ...Option) (*File, error) {
	o := applyOptions(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &PathError{Path: path, Err: err}
	}

	src := &File{path: path, file: f}

	var in io.Reader = f
	if o.Mmap {
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, &PathError{Path: path, Err: err}
		}
		if st.Size() == 0 {
			f.Close()
			return nil, fmt.Errorf("%w: %s is empty", record.ErrHeaderMissing, path)
		}
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mapping %s: %w", path, err)
		}
		src.mapped = m
		in = bytes.NewReader(m)
	}

	r := csv.NewReader(in)
	r.Comma = o.Comma
	r.Comment = o.Comment
	r.LazyQuotes = o.LazyQuotes
	r.TrimLeadingSpace = o.TrimLeadingSpace
	// width is checked by the decoder so mismatches stay row-level errors
	r.FieldsPerRecord = -1
	src.reader = r

	fields, err := r.Read()
	if err == io.EOF {
		src.Close()
		return nil, fmt.Errorf("%w: %s has no lines", record.ErrHeaderMissing, path)
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("%w: %w", record.ErrHeaderMissing, err)
	}

	header, err := record.ParseHeader(fields)
	if err != nil {
		src.Close()
		return nil, err
	}
	src.header = header

	return src, nil
}

func (s *File) Path() string {
	return s.path
}

func (s *File) Header() record.Header {
	return s.header
}

// Next returns the next data row or io.EOF. A malformed row is reported as
// a *record.RowError and reading may continue; any other error is fatal.
func (s *File) Next() (Row, error) {
	fields, err := s.reader.Read()
	if err == io.EOF {
		return Row{}, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return Row{Line: pe.StartLine}, &record.RowError{Line: pe.StartLine, Err: pe.Err}
		}
		return Row{}, fmt.Errorf("reading %s: %w", s.path, err)
	}

	line, _ := s.reader.FieldPos(0)
	return Row{Line: line, Fields: fields}, nil
}

// Rows iterates the remaining data rows. Iteration stops after io.EOF or a
// fatal error; row-level errors are yielded and iteration continues.
func (s *File) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for {
			row, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(row, err) {
				return
			}
			var rowErr *record.RowError
			if err != nil && !errors.As(err, &rowErr) {
				return
			}
		}
	}
}

func (s *File) Close() error {
	var errs []error
	if s.mapped != nil {
		errs = append(errs, s.mapped.Unmap())
		s.mapped = nil
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
		s.file = nil
	}
	return errors.Join(errs...)
}

func validRune(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
