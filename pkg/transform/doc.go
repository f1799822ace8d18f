// Package transform holds batch transforms and the record stages they are
// built from: a fluent Chain, built-in stages, CEL rules and JSON Schema
// validation.
package transform
