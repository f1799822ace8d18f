package aggregate

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/ib-77/rowbatch/pkg/record"
)

// Digest is an order independent fingerprint of a multiset of records.
// Two runs that produce the same bag of records have the same digest.
func Digest[R any](records []R, encode func(R) string) uint64 {
	var sum uint64
	for _, r := range records {
		sum += xxhash.Sum64String(encode(r))
	}
	return sum
}

// RecordKey is the canonical encoding of a record: sorted key=value pairs.
func RecordKey(r record.Record) string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(0x1e)
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(r[k])
	}
	return sb.String()
}
