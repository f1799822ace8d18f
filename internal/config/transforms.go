package config

import (
	"fmt"
	"os"

	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/ib-77/rowbatch/pkg/transform"
)

// RecordTransform compiles the transforms section into one batch transform.
func (c *Config) RecordTransform() (transform.Func[record.Record], error) {
	t := c.Transforms
	chain := transform.NewChain[record.Record]()

	if len(t.Normalize) > 0 {
		chain.Then("normalize", transform.Normalize(t.Normalize...))
	}
	if len(t.Require) > 0 {
		chain.Then("require", transform.Require(t.Require...))
	}
	if t.Schema != "" {
		doc, err := os.ReadFile(t.Schema)
		if err != nil {
			return nil, fmt.Errorf("reading schema: %w", err)
		}
		s, err := transform.CompileSchema(doc)
		if err != nil {
			return nil, err
		}
		chain.Then("schema", s.Stage())
	}
	if !t.Rules.IsZero() {
		p, err := transform.CompileRules(t.Rules)
		if err != nil {
			return nil, err
		}
		chain.Then("rules", p.Stage())
	}
	if b := t.Bucket; b != nil {
		chain.Then("bucket", transform.Bucket(b.Field, b.Target, b.Buckets))
	}
	if f := t.Fingerprint; f != nil {
		chain.Then("fingerprint", transform.Fingerprint(f.Target, f.Fields...))
	}
	if t.MarkProcessed {
		chain.Then("mark", transform.MarkProcessed())
	}
	return chain.Batch(), nil
}

// RowTransform is the transform for typed rows.
func (c *Config) RowTransform() transform.Func[record.DataRow] {
	if !c.Transforms.MarkProcessed {
		return transform.Identity[record.DataRow]()
	}
	return transform.PerRecord(transform.Step("mark", transform.MarkRow()))
}

// OutputColumns lists the columns written for a source header, including
// the ones the configured stages add.
func (c *Config) OutputColumns(header []string) []string {
	if c.Input.Typed {
		return []string{"id", "value", "label", transform.ProcessedField}
	}
	out := append([]string(nil), header...)
	seen := make(map[string]bool, len(out))
	for _, h := range out {
		seen[h] = true
	}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, col := range c.Transforms.Rules.Derive {
		add(col.Name)
	}
	if b := c.Transforms.Bucket; b != nil {
		add(b.Target)
	}
	if f := c.Transforms.Fingerprint; f != nil {
		add(f.Target)
	}
	if c.Transforms.MarkProcessed {
		add(transform.ProcessedField)
	}
	return out
}
