package transform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/twmb/murmur3"
)

// ErrRequired is returned by Require for an empty or absent field.
var ErrRequired = errors.New("required field is empty")

// ProcessedField is the column set by MarkProcessed.
const ProcessedField = "processed"

const fingerprintSeparator = 0x1f

// MarkProcessed sets processed=true on every record.
func MarkProcessed() Stage[record.Record] {
	return func(_ context.Context, r record.Record) (record.Record, error) {
		out := r.Clone()
		out[ProcessedField] = "true"
		return out, nil
	}
}

// MarkRow is MarkProcessed for typed rows.
func MarkRow() Stage[record.DataRow] {
	return func(_ context.Context, r record.DataRow) (record.DataRow, error) {
		r.Processed = true
		return r, nil
	}
}

// Normalize trims and lower-cases the named fields that are present.
func Normalize(fields ...string) Stage[record.Record] {
	return func(_ context.Context, r record.Record) (record.Record, error) {
		out := r.Clone()
		for _, f := range fields {
			if v, ok := out[f]; ok {
				out[f] = strings.ToLower(strings.TrimSpace(v))
			}
		}
		return out, nil
	}
}

func Require(fields ...string) Stage[record.Record] {
	return func(_ context.Context, r record.Record) (record.Record, error) {
		for _, f := range fields {
			if strings.TrimSpace(r[f]) == "" {
				return r, fmt.Errorf("%w: %s", ErrRequired, f)
			}
		}
		return r, nil
	}
}

// Bucket stores murmur3(field) mod n in target. Equal values always land
// in the same bucket.
func Bucket(field, target string, n uint32) Stage[record.Record] {
	if n == 0 {
		n = 1
	}
	return func(_ context.Context, r record.Record) (record.Record, error) {
		out := r.Clone()
		out[target] = strconv.FormatUint(uint64(murmur3.Sum32([]byte(r[field]))%n), 10)
		return out, nil
	}
}

// Fingerprint stores an xxhash64 hex digest of the named fields in target.
func Fingerprint(target string, fields ...string) Stage[record.Record] {
	return func(_ context.Context, r record.Record) (record.Record, error) {
		h := xxhash.New()
		for i, f := range fields {
			if i > 0 {
				_, _ = h.Write([]byte{fingerprintSeparator})
			}
			_, _ = h.WriteString(r[f])
		}
		out := r.Clone()
		out[target] = fmt.Sprintf("%016x", h.Sum64())
		return out, nil
	}
}
