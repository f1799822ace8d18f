package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ib-77/rowbatch/pkg/ingest"
	"github.com/ib-77/rowbatch/pkg/sink"
	"github.com/ib-77/rowbatch/pkg/source"
	"github.com/ib-77/rowbatch/pkg/transform"
	"gopkg.in/yaml.v3"
)

// Config holds everything the rowbatch command needs for one run.
type Config struct {
	Input      InputConfig     `yaml:"input"`
	Pipeline   PipelineConfig  `yaml:"pipeline"`
	Transforms TransformConfig `yaml:"transforms"`
	Output     OutputConfig    `yaml:"output"`
	Log        LogConfig       `yaml:"log"`
}

type InputConfig struct {
	Path             string   `yaml:"path"`
	Delimiter        string   `yaml:"delimiter"`
	Comment          string   `yaml:"comment"`
	LazyQuotes       bool     `yaml:"lazy_quotes"`
	TrimLeadingSpace bool     `yaml:"trim_leading_space"`
	Mmap             bool     `yaml:"mmap"`
	Typed            bool     `yaml:"typed"` // decode into id,value,label rows
	Required         []string `yaml:"required"`
}

type PipelineConfig struct {
	BatchSize    int    `yaml:"batch_size"`
	Workers      int    `yaml:"workers"` // 0 = GOMAXPROCS, -1 = one per batch
	Policy       string `yaml:"policy"`
	MaxRowErrors int    `yaml:"max_row_errors"`
	Ordered      bool   `yaml:"ordered"`
}

type BucketConfig struct {
	Field   string `yaml:"field"`
	Target  string `yaml:"target"`
	Buckets uint32 `yaml:"buckets"`
}

type FingerprintConfig struct {
	Target string   `yaml:"target"`
	Fields []string `yaml:"fields"`
}

// TransformConfig lists the stages applied to untyped records, in the
// order they appear here.
type TransformConfig struct {
	MarkProcessed bool               `yaml:"mark_processed"`
	Normalize     []string           `yaml:"normalize"`
	Require       []string           `yaml:"require"`
	Rules         transform.Rules    `yaml:"rules"`
	Schema        string             `yaml:"schema"` // path to a JSON Schema document
	Bucket        *BucketConfig      `yaml:"bucket"`
	Fingerprint   *FingerprintConfig `yaml:"fingerprint"`
}

type OutputConfig struct {
	Format string `yaml:"format"` // ndjson, avro, arrow or none
	Path   string `yaml:"path"`   // empty or "-" for stdout
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// FormatNone discards transformed batches.
const FormatNone = "none"

func Default() *Config {
	return &Config{
		Input:      InputConfig{Delimiter: ","},
		Pipeline:   PipelineConfig{BatchSize: ingest.DefaultBatchSize, Policy: ingest.PolicyCollect.String()},
		Transforms: TransformConfig{MarkProcessed: true},
		Output:     OutputConfig{Format: string(sink.FormatNDJSON)},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.Pipeline.BatchSize)
	}
	if c.Pipeline.Workers < ingest.Unbounded {
		return fmt.Errorf("workers must be -1, 0 or positive, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.MaxRowErrors < 0 {
		return fmt.Errorf("max_row_errors must not be negative")
	}
	if _, err := ingest.ParsePolicy(c.Pipeline.Policy); err != nil {
		return err
	}
	if _, err := singleRune("delimiter", c.Input.Delimiter); err != nil {
		return err
	}
	if c.Input.Comment != "" {
		if _, err := singleRune("comment", c.Input.Comment); err != nil {
			return err
		}
	}
	if c.Output.Format != FormatNone {
		if _, err := sink.ParseFormat(c.Output.Format); err != nil {
			return err
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if b := c.Transforms.Bucket; b != nil && (b.Field == "" || b.Target == "" || b.Buckets == 0) {
		return fmt.Errorf("bucket needs field, target and a positive bucket count")
	}
	if f := c.Transforms.Fingerprint; f != nil && (f.Target == "" || len(f.Fields) == 0) {
		return fmt.Errorf("fingerprint needs a target and at least one field")
	}
	return nil
}

// SourceOptions translates the input section.
func (c *Config) SourceOptions() []source.Option {
	opts := []source.Option{
		source.WithLazyQuotes(c.Input.LazyQuotes),
		source.WithTrimLeadingSpace(c.Input.TrimLeadingSpace),
		source.WithMmap(c.Input.Mmap),
	}
	if r, err := singleRune("delimiter", c.Input.Delimiter); err == nil {
		opts = append(opts, source.WithDelimiter(r))
	}
	if r, err := singleRune("comment", c.Input.Comment); err == nil {
		opts = append(opts, source.WithComment(r))
	}
	return opts
}

// Options translates the pipeline and input sections.
func (c *Config) Options(logger *slog.Logger) []ingest.Option {
	policy, _ := ingest.ParsePolicy(c.Pipeline.Policy)
	return []ingest.Option{
		ingest.WithBatchSize(c.Pipeline.BatchSize),
		ingest.WithWorkers(c.Pipeline.Workers),
		ingest.WithPolicy(policy),
		ingest.WithMaxRowErrors(c.Pipeline.MaxRowErrors),
		ingest.WithOrdered(c.Pipeline.Ordered),
		ingest.WithRequiredColumns(c.Input.Required...),
		ingest.WithSourceOptions(c.SourceOptions()...),
		ingest.WithLogger(logger),
	}
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// NewLogger builds the slog logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func singleRune(name, s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", name, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
