// Package sink encodes streamed batches as NDJSON, Avro object container
// files or Arrow IPC streams.
package sink
