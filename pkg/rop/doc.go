// Package rop holds the railway-style Result[T] used to carry the outcome of
// a unit of work (a processed batch, for instance) across goroutines.
//
// A Result is exactly one of success, failure or cancellation and carries a
// uuid so outcomes can be correlated in logs.
//
// Helpers:
// - Success/Fail/Cancel/Recover: construct Result[T]
// - Try: call a function (Out, error) and convert error to failure or cancel
// - Switch/Map: move from Result[In] to Result[Out]
// - Finally: reduce to a concrete value via success/error/cancel handlers
package rop
