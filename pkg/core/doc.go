// Package core contains the concurrency plumbing used by the ingestion
// pipeline: worker lines over a channel, an unbounded spawner, cancellation
// reporters, channel helpers and worker options carried on the context.
// It holds no record or batch logic.
package core
