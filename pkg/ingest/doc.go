// Package ingest coordinates a run: it opens the source, decodes rows on one
// goroutine, cuts them into batches, fans the batches out to worker lines
// and merges what comes back, either into one aggregate or through a
// streaming callback.
package ingest
