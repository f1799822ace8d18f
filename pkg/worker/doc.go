// Package worker runs a transform over one batch and turns every way it
// can fail into a structured error instead of a crash.
package worker
