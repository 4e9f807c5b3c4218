// Package pipeline runs the sorer phases over a loaded buffer: schema
// inference over the head of the input, alignment of the requested byte
// window to row boundaries, and a columnar build of that window.
//
// # Basic Usage
//
//	in, err := pipeline.Open("data.sor", pipeline.InputOptions{}, logger)
//	defer in.Close()
//
//	res, err := pipeline.New(logger, pipeline.Options{From: 0, Len: -1}).Run(ctx, in.Buffer())
//	v, err := res.Table().ValueAt(2, 10)
//
// Large windows are split into row-aligned chunks that are built
// concurrently and concatenated in input order, so the result is the same
// as a single sequential build.
package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/config"
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/logger"
	"github.com/yth/sorer/pkg/metrics"
	"github.com/yth/sorer/pkg/mmap"
	"github.com/yth/sorer/pkg/observability"
	"github.com/yth/sorer/pkg/schema"
	"github.com/yth/sorer/pkg/sor"
)

// Options configures a run
type Options struct {
	// From and Len select the byte window to build. Len < 0 means to the
	// end of the input.
	From int
	Len  int
	// SampleRows bounds schema inference. Zero means the default.
	SampleRows int
	// Workers bounds concurrent chunk builds. Values below 2 build
	// sequentially.
	Workers int
	// MinChunkBytes is the smallest chunk handed to a worker
	MinChunkBytes int
	// FailOnMalformed aborts on the first unterminated field
	FailOnMalformed bool
}

// OptionsFromConfig maps a run configuration onto pipeline options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		From:            cfg.Input.From,
		Len:             cfg.Input.Len,
		SampleRows:      cfg.Inference.SampleRows,
		Workers:         cfg.Build.GetWorkers(),
		MinChunkBytes:   cfg.Build.MinChunkBytes,
		FailOnMalformed: cfg.Build.FailOnMalformed,
	}
}

// Result is the outcome of a run
type Result struct {
	Buffer  *sor.Buffer
	Schema  *schema.Schema
	Columns *columnar.Columnar
	// Start and End are the row-aligned bounds that were built
	Start, End int
	Chunks     int
	Inference  schema.Stats
	Build      columnar.BuildStats
	Duration   time.Duration
}

// Table exposes the query operations over the result
func (r *Result) Table() *columnar.Table {
	return columnar.NewTable(r.Buffer, r.Columns)
}

// Pipeline runs inference and build with one set of options
type Pipeline struct {
	logger *zap.Logger
	opts   Options
}

// New creates a pipeline. A nil logger disables logging.
func New(log *zap.Logger, opts Options) *Pipeline {
	return &Pipeline{logger: logger.OrNop(log), opts: opts}
}

// Run is New(logger.Get(), opts).Run(ctx, buf)
func Run(ctx context.Context, buf *sor.Buffer, opts Options) (*Result, error) {
	return New(logger.Get(), opts).Run(ctx, buf)
}

// Run infers the schema from the start of buf and builds the configured
// window against it
func (p *Pipeline) Run(ctx context.Context, buf *sor.Buffer) (*Result, error) {
	if buf == nil {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "nil buffer")
	}
	began := time.Now()
	res := &Result{Buffer: buf}

	err := observability.Trace(ctx, metrics.PhaseInfer, func(ctx context.Context) error {
		inf := schema.NewInferencer(p.logger, schema.Options{SampleRows: p.opts.SampleRows})
		s, stats, err := inf.Infer(buf)
		if err != nil {
			return err
		}
		res.Schema, res.Inference = s, stats
		metrics.ObserveInference(stats)
		return nil
	}, attribute.Int("sorer.bytes", buf.Len()))
	if err != nil {
		return nil, err
	}
	p.logger.Info("schema inferred",
		zap.Stringer("schema", res.Schema),
		zap.Int("rows_sampled", res.Inference.RowsSampled),
		zap.Duration("duration", res.Inference.Duration))

	length := p.opts.Len
	if length < 0 {
		length = buf.Len()
	}
	res.Start, res.End, err = mmap.AlignRange(buf, p.opts.From, length)
	if err != nil {
		return nil, err
	}

	err = observability.Trace(ctx, metrics.PhaseBuild, func(ctx context.Context) error {
		return p.build(ctx, res)
	}, attribute.Int("sorer.start", res.Start), attribute.Int("sorer.end", res.End))
	if err != nil {
		return nil, err
	}
	metrics.ObserveBuild(res.Build, res.End-res.Start)

	res.Duration = time.Since(began)
	p.logger.Info("columns built",
		zap.Int("start", res.Start),
		zap.Int("end", res.End),
		zap.Int("chunks", res.Chunks),
		zap.Int("rows_accepted", res.Build.RowsAccepted),
		zap.Int("rows_dropped", res.Build.Dropped()),
		zap.Duration("duration", res.Duration))

	return res, nil
}

// build fills res.Columns from [res.Start, res.End), in parallel when the
// window is large enough
func (p *Pipeline) build(ctx context.Context, res *Result) error {
	builder := columnar.NewBuilder(p.logger, columnar.Options{FailOnMalformed: p.opts.FailOnMalformed})
	chunks := SplitRange(res.Buffer, res.Start, res.End, p.opts.Workers, p.opts.MinChunkBytes)
	res.Chunks = len(chunks)

	if len(chunks) <= 1 {
		cols, stats, err := builder.BuildContext(ctx, res.Buffer, res.Start, res.End, res.Schema)
		if err != nil {
			return err
		}
		res.Columns, res.Build = cols, stats
		return nil
	}

	began := time.Now()
	parts := make([]*columnar.Columnar, len(chunks))
	stats := make([]columnar.BuildStats, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, c := range chunks {
		g.Go(func() error {
			_, span := observability.StartSpan(gctx, "sorer.chunk",
				attribute.Int("sorer.chunk", i),
				attribute.Int("sorer.start", c.Start),
				attribute.Int("sorer.end", c.End))
			cols, st, err := builder.BuildContext(gctx, res.Buffer, c.Start, c.End, res.Schema)
			span.End(err)
			if err != nil {
				return err
			}
			parts[i], stats[i] = cols, st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := parts[0]
	for i := 1; i < len(parts); i++ {
		if err := out.Append(parts[i]); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to merge chunk").WithDetail("chunk", i)
		}
	}
	var total columnar.BuildStats
	for _, st := range stats {
		total.Add(st)
	}
	// chunk durations overlap; report wall time
	total.Duration = time.Since(began)

	res.Columns, res.Build = out, total
	return nil
}
