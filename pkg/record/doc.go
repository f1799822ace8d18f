// Package record decodes raw delimited rows against a header.
//
// Two row shapes are supported: Record, a dynamic column-name to string map,
// and any struct decoded by StructDecoder through `csv` field tags. Both
// satisfy Decoder[R], so a run picks one shape and keeps it.
package record
