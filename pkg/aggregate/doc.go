// Package aggregate merges batch outputs produced by concurrent workers,
// either into one in-memory result or through a serialized callback.
package aggregate
