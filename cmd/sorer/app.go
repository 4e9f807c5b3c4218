package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yth/sorer/internal/pipeline"
	"github.com/yth/sorer/pkg/config"
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/logger"
	"github.com/yth/sorer/pkg/metrics"
	"github.com/yth/sorer/pkg/observability"
)

// app carries the state shared by every command of one invocation
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	log      *zap.Logger
	shutdown observability.ShutdownFunc
}

func newApp() *app {
	v := viper.New()
	v.SetEnvPrefix("SORER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &app{v: v}
}

// addInputFlags registers the flags every data command shares
func addInputFlags(fs *pflag.FlagSet) {
	defaults := config.Default()

	fs.StringP("file", "f", "", "path to the .sor file, optionally compressed")
	fs.String("from", "", "byte offset where the read starts (default 0)")
	fs.String("len", "", "number of bytes to read (default: to the end of the file)")
	fs.String("config", "", "path to a YAML configuration file")
	fs.String("compression", defaults.Input.Compression, "input compression: auto, none, gzip, zstd, lz4, snappy, s2, deflate")
	fs.Int("sample-rows", defaults.Inference.SampleRows, "number of leading rows used to infer the schema")
	fs.Int("workers", defaults.Build.Workers, "number of concurrent chunk builders")
	fs.Int("min-chunk-bytes", defaults.Build.MinChunkBytes, "smallest byte range handed to a worker")
	fs.Bool("fail-on-malformed", false, "abort on a field without a closing '>' instead of skipping the row")
	fs.String("log-level", defaults.Observability.LogLevel, "log level (debug, info, warn, error)")
	fs.String("log-encoding", defaults.Observability.LogEncoding, "log encoding (json, console)")
	fs.Bool("metrics", false, "write Prometheus metrics to stderr when done")
	fs.Bool("trace", false, "write OpenTelemetry spans to stderr")
}

// prepare resolves the configuration (defaults, YAML file, SORER_*
// environment, flags) and sets up logging and tracing
func (a *app) prepare(cmd *cobra.Command, _ []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to bind flags")
	}

	cfg := config.Default()
	if path := a.v.GetString("config"); path != "" {
		if err := config.Load(path, cfg); err != nil {
			return err
		}
	}
	if err := a.overlay(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	}); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize logger")
	}
	a.log = logger.Get().With(zap.String("command", cmd.Name()))

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		Enabled:        cfg.Observability.EnableTracing,
		ServiceName:    "sorer",
		ServiceVersion: version,
		SamplingRate:   cfg.Observability.TracingSampleRate,
		Writer:         cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.shutdown = shutdown
	return nil
}

// overlay copies values set by flag or environment onto cfg
func (a *app) overlay(cfg *config.Config) error {
	v := a.v
	if v.IsSet("file") {
		cfg.Input.Path = v.GetString("file")
	}
	if v.IsSet("from") {
		n, err := parseUint("from", v.GetString("from"))
		if err != nil {
			return err
		}
		cfg.Input.From = n
	}
	if v.IsSet("len") {
		n, err := parseUint("len", v.GetString("len"))
		if err != nil {
			return err
		}
		cfg.Input.Len = n
	}
	if v.IsSet("compression") {
		cfg.Input.Compression = v.GetString("compression")
	}
	if v.IsSet("sample-rows") {
		cfg.Inference.SampleRows = v.GetInt("sample-rows")
	}
	if v.IsSet("workers") {
		cfg.Build.Workers = v.GetInt("workers")
	}
	if v.IsSet("min-chunk-bytes") {
		cfg.Build.MinChunkBytes = v.GetInt("min-chunk-bytes")
	}
	if v.IsSet("fail-on-malformed") {
		cfg.Build.FailOnMalformed = v.GetBool("fail-on-malformed")
	}
	if v.IsSet("log-level") {
		cfg.Observability.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("log-encoding") {
		cfg.Observability.LogEncoding = v.GetString("log-encoding")
	}
	if v.IsSet("metrics") {
		cfg.Observability.EnableMetrics = v.GetBool("metrics")
	}
	if v.IsSet("trace") {
		cfg.Observability.EnableTracing = v.GetBool("trace")
	}
	return nil
}

// wrap runs fn and then flushes spans, metrics and logs whatever fn returned
func (a *app) wrap(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			a.log.Debug("command failed", zap.Error(err))
		}
		if a.shutdown != nil {
			if serr := a.shutdown(context.Background()); serr != nil && err == nil {
				err = errors.Wrap(serr, errors.ErrorTypeInternal, "failed to flush traces")
			}
		}
		if a.cfg.Observability.EnableMetrics {
			if merr := metrics.WriteText(cmd.ErrOrStderr()); merr != nil && err == nil {
				err = errors.Wrap(merr, errors.ErrorTypeInternal, "failed to write metrics")
			}
		}
		_ = logger.Sync()
		return err
	}
}

// open loads the configured input file
func (a *app) open() (*pipeline.Input, error) {
	if a.cfg.Input.Path == "" {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "an input file is required (-f FILE)")
	}
	alg, err := a.cfg.Input.Algorithm()
	if err != nil {
		return nil, err
	}
	return pipeline.Open(a.cfg.Input.Path, pipeline.InputOptions{Compression: alg}, a.log)
}

// build opens the input and runs inference and the columnar build over the
// configured range. The caller closes the input.
func (a *app) build(ctx context.Context) (*pipeline.Input, *pipeline.Result, error) {
	in, err := a.open()
	if err != nil {
		return nil, nil, err
	}
	res, err := pipeline.New(a.log, pipeline.OptionsFromConfig(a.cfg)).Run(ctx, in.Buffer())
	if err != nil {
		in.Close()
		return nil, nil, err
	}
	return in, res, nil
}

// parseUint parses a non-negative decimal command-line number
func parseUint(flag, s string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, strconv.IntSize-1)
	if err != nil {
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument, "invalid numeric argument for %s: %q", flag, s).
			WithDetail("flag", flag)
	}
	return int(n), nil
}
