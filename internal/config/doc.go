// Package config loads the YAML configuration of the rowbatch command and
// turns it into pipeline options and transforms.
package config
