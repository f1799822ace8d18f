package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ib-77/rowbatch/internal/config"
	"github.com/ib-77/rowbatch/pkg/batch"
	"github.com/ib-77/rowbatch/pkg/ingest"
	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/ib-77/rowbatch/pkg/sink"
	"github.com/ib-77/rowbatch/pkg/source"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rowbatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to a YAML config file")
	input := fs.String("input", "", "delimited file to ingest")
	batchSize := fs.Int("batch-size", 0, "records per batch")
	workers := fs.Int("workers", 0, "worker lines, 0 for GOMAXPROCS, -1 for one per batch")
	delimiter := fs.String("delimiter", "", "field delimiter")
	policy := fs.String("policy", "", "collect or abort")
	format := fs.String("format", "", "ndjson, avro, arrow or none")
	output := fs.String("output", "", "output file, stdout when empty")
	mmap := fs.Bool("mmap", false, "memory-map the input")
	ordered := fs.Bool("ordered", false, "collect all records and write them in input order")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "text or json")
	typed := fs.Bool("typed", false, "decode rows into id,value,label")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "rowbatch: %v\n", err)
			return 2
		}
		cfg = loaded
	}

	// flags that were set win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input.Path = *input
		case "batch-size":
			cfg.Pipeline.BatchSize = *batchSize
		case "workers":
			cfg.Pipeline.Workers = *workers
		case "delimiter":
			cfg.Input.Delimiter = *delimiter
		case "policy":
			cfg.Pipeline.Policy = *policy
		case "format":
			cfg.Output.Format = *format
		case "output":
			cfg.Output.Path = *output
		case "mmap":
			cfg.Input.Mmap = *mmap
		case "ordered":
			cfg.Pipeline.Ordered = *ordered
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "typed":
			cfg.Input.Typed = *typed
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "rowbatch: invalid flags: %v\n", err)
		return 2
	}
	if cfg.Input.Path == "" {
		fmt.Fprintln(stderr, "rowbatch: -input is required")
		return 2
	}

	logger := cfg.NewLogger(stderr).With("component", "rowbatch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := ingestFile(ctx, cfg, logger, stdout)
	if res.summary != "" {
		fmt.Fprintln(stderr, res.summary)
	}
	if err != nil {
		logger.Error("ingestion failed", "input", cfg.Input.Path, "error", err)
		return 1
	}
	if res.collected != nil {
		logger.Warn("some rows or batches were skipped", "input", cfg.Input.Path, "error", res.collected)
	}
	return 0
}

func ingestFile(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) (outcome, error) {
	header, err := peekHeader(cfg)
	if err != nil {
		return outcome{}, err
	}

	out, closeOut, err := openOutput(cfg, stdout)
	if err != nil {
		return outcome{}, err
	}
	defer closeOut()

	var w sink.Writer
	if cfg.Output.Format != config.FormatNone {
		f, _ := sink.ParseFormat(cfg.Output.Format)
		if w, err = sink.New(f, out, cfg.OutputColumns(header)); err != nil {
			return outcome{}, err
		}
	}

	opts := cfg.Options(logger)
	if cfg.Input.Typed {
		p, err := ingest.New[record.DataRow](record.MustStructDecoder[record.DataRow](), cfg.RowTransform(), opts...)
		if err != nil {
			return outcome{}, err
		}
		return execute(ctx, p, cfg, w, record.DataRow.Record)
	}

	fn, err := cfg.RecordTransform()
	if err != nil {
		return outcome{}, err
	}
	p, err := ingest.NewMap(fn, opts...)
	if err != nil {
		return outcome{}, err
	}
	return execute(ctx, p, cfg, w, func(r record.Record) record.Record { return r })
}

// outcome is what a finished run prints: its summary and the row and batch
// errors it skipped.
type outcome struct {
	summary   string
	collected error
}

// execute streams batches into w, or collects them first when the output
// has to follow input order.
func execute[R any](ctx context.Context, p *ingest.Pipeline[R], cfg *config.Config, w sink.Writer,
	convert func(R) record.Record) (outcome, error) {

	deliver := func(context.Context, batch.Batch[R]) error { return nil }
	if w != nil {
		deliver = sink.Batches(w, convert)
	}

	var (
		rep *ingest.Report[R]
		err error
	)
	if cfg.Pipeline.Ordered {
		rep, err = p.Run(ctx, cfg.Input.Path)
		if err == nil {
			err = deliver(ctx, batch.Batch[R]{Records: rep.Records})
		}
	} else {
		rep, err = p.Stream(ctx, cfg.Input.Path, deliver)
	}

	if w != nil {
		err = errors.Join(err, w.Close())
	}
	if rep == nil {
		return outcome{}, err
	}
	return outcome{summary: rep.String(), collected: rep.Err()}, err
}

func peekHeader(cfg *config.Config) ([]string, error) {
	src, err := source.Open(cfg.Input.Path, cfg.SourceOptions()...)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Header().Names(), nil
}

func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func(), error) {
	if cfg.Output.Format == config.FormatNone || cfg.Output.Path == "" || cfg.Output.Path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(cfg.Output.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
