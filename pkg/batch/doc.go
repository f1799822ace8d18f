// Package batch partitions a record stream into fixed-size batches.
package batch
