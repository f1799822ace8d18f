// Package source opens delimited text files and yields their header and raw
// rows with line numbers. Files can be read directly or through a read-only
// memory mapping.
package source
