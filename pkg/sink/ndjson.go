package sink

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/ib-77/rowbatch/pkg/record"
)

// NDJSON writes one JSON object per record and line.
type NDJSON struct {
	buf    *bufio.Writer
	enc    *json.Encoder
	closed bool
}

func NewNDJSON(w io.Writer) *NDJSON {
	buf := bufio.NewWriter(w)
	return &NDJSON{buf: buf, enc: json.NewEncoder(buf)}
}

func (n *NDJSON) Write(records []record.Record) error {
	if n.closed {
		return ErrClosed
	}
	for _, r := range records {
		if err := n.enc.Encode(r); err != nil {
			return err
		}
	}
	return n.buf.Flush()
}

func (n *NDJSON) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true
	return n.buf.Flush()
}
