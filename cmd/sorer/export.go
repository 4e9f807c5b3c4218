package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/compression"
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/formats"
	"github.com/yth/sorer/pkg/metrics"
	"github.com/yth/sorer/pkg/observability"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the built columns as Arrow IPC, Parquet, Avro or JSON lines",
		Long: `export builds the selected range and writes every accepted row.

Arrow and Parquet output have one column per schema column, named c0, c1,
..., typed bool, int64, float64 or utf8; all-missing columns are null-typed.
Avro output uses one record per row with a nullable field per column. JSON
lines output writes one array per row. Missing values are null everywhere.`,
		Example: `  sorer export -f data.sor --format arrow -o data.arrow --codec zstd
  sorer export -f data.sor --format parquet -o data.parquet
  sorer export -f data.sor --format avro --codec deflate -o data.avro
  sorer export -f data.sor.gz --format jsonl --output-compression gzip -o rows.jsonl.gz`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().String("format", string(formats.Arrow), "output format (arrow, parquet, avro, jsonl)")
	cmd.Flags().StringP("output", "o", "-", "output path, - for stdout")
	cmd.Flags().String("output-compression", string(compression.None), "compress the whole output stream (none, gzip, zstd, lz4, snappy, s2, deflate)")
	cmd.Flags().String("codec", "", "format codec: arrow lz4|zstd, parquet snappy|gzip|zstd|brotli, avro deflate|snappy")
	cmd.Flags().Int("batch-size", formats.DefaultWriterConfig().BatchSize, "rows per record batch, row group or avro block")

	cmd.RunE = a.wrap(func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("format")
		format, err := formats.ParseFormat(name)
		if err != nil {
			return err
		}
		algName, _ := cmd.Flags().GetString("output-compression")
		alg, err := compression.ParseAlgorithm(algName)
		if err != nil {
			return err
		}
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		codec, _ := cmd.Flags().GetString("codec")
		output, _ := cmd.Flags().GetString("output")

		in, res, err := a.build(cmd.Context())
		if err != nil {
			return err
		}
		defer in.Close()

		dst, closeDst, err := openOutput(output, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		var rows int64
		err = observability.Trace(cmd.Context(), metrics.PhaseExport, func(context.Context) error {
			timer := metrics.NewTimer(metrics.PhaseExport)
			defer timer.Stop()

			n, werr := export(dst, res.Table(), &formats.WriterConfig{
				Format:      format,
				BatchSize:   batchSize,
				Compression: codec,
			}, alg)
			rows = n
			return werr
		}, attribute.String("sorer.format", string(format)))
		if cerr := closeDst(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close output").WithDetail("file", output)
		}
		if err != nil {
			return err
		}

		a.log.Info("export finished",
			zap.String("format", string(format)),
			zap.String("output", output),
			zap.String("compression", string(alg)),
			zap.Int64("rows", rows))
		return nil
	})
	return cmd
}

// export writes t in cfg.Format through a compression stream
func export(dst io.Writer, t *columnar.Table, cfg *formats.WriterConfig, alg compression.Algorithm) (int64, error) {
	zw, err := compression.NewWriter(dst, &compression.Config{Algorithm: alg, Level: compression.Default})
	if err != nil {
		return 0, err
	}
	w, err := formats.NewWriter(zw, cfg)
	if err != nil {
		zw.Close()
		return 0, err
	}
	if err := w.WriteTable(t); err != nil {
		w.Close()
		zw.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		zw.Close()
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeData, "failed to finish compressed output")
	}
	return w.RowsWritten(), nil
}

// openOutput returns the destination writer and a function that closes it.
// "-" and "" select stdout.
func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the --output flag
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create output").WithDetail("file", path)
	}
	return f, f.Close, nil
}
