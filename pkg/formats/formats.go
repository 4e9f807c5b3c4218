// Package formats exports built sor tables to Apache Arrow IPC, Parquet,
// Avro object container files and line-delimited JSON
package formats

import (
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/errors"
)

// Format represents an export format
type Format string

const (
	// Arrow is the Apache Arrow IPC file format
	Arrow Format = "arrow"
	// Parquet is the Apache Parquet file format
	Parquet Format = "parquet"
	// Avro is the Avro object container file format
	Avro Format = "avro"
	// JSONLines is one JSON array per row
	JSONLines Format = "jsonl"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case Arrow, Parquet, Avro, JSONLines:
		return f, nil
	case "ndjson", "json":
		return JSONLines, nil
	default:
		return "", errors.Newf(errors.ErrorTypeInvalidArgument, "unsupported export format: %s", name)
	}
}

// Writer writes tables in one export format
type Writer interface {
	// WriteTable writes every row of t
	WriteTable(t *columnar.Table) error
	// Close flushes buffered rows and finishes the output. It does not close
	// the underlying io.Writer.
	Close() error
	// Format returns the export format
	Format() Format
	// RowsWritten returns the number of rows written
	RowsWritten() int64
}

// WriterConfig configures export writers
type WriterConfig struct {
	Format Format
	// BatchSize is the number of rows per Arrow record batch, Parquet row
	// group or Avro block
	BatchSize int
	// Compression selects the format's own codec: lz4 or zstd for Arrow;
	// snappy (default), gzip, zstd or brotli for Parquet; deflate or snappy
	// for Avro. "none" disables it. JSON lines output is compressed by
	// wrapping the io.Writer instead.
	Compression string
}

// DefaultWriterConfig returns default writer configuration
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		Format:    Arrow,
		BatchSize: 64 * 1024,
	}
}

// NewWriter creates an export writer
func NewWriter(w io.Writer, config *WriterConfig) (Writer, error) {
	if config == nil {
		config = DefaultWriterConfig()
	}
	if config.BatchSize <= 0 {
		cp := *config
		cp.BatchSize = DefaultWriterConfig().BatchSize
		config = &cp
	}

	switch config.Format {
	case Arrow:
		return newArrowWriter(w, config)
	case Parquet:
		return newParquetWriter(w, config, memory.NewGoAllocator())
	case Avro:
		return newAvroWriter(w, config)
	case JSONLines:
		return newJSONLinesWriter(w), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unsupported export format: %s", config.Format)
	}
}

// FileExtension returns the conventional file extension for f
func FileExtension(f Format) string {
	switch f {
	case Arrow:
		return ".arrow"
	case Parquet:
		return ".parquet"
	case Avro:
		return ".avro"
	case JSONLines:
		return ".jsonl"
	default:
		return ""
	}
}

// ColumnName returns the exported name of column i
func ColumnName(i int) string {
	return "c" + strconv.Itoa(i)
}
