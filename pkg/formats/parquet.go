package formats

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/yth/sorer/pkg/errors"
)

// parquetCodec maps a WriterConfig compression name to a Parquet codec
func parquetCodec(name string) (compress.Compression, error) {
	switch name {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "none":
		return compress.Codecs.Uncompressed, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	default:
		return compress.Codecs.Uncompressed, errors.Newf(errors.ErrorTypeInvalidArgument,
			"unsupported parquet compression: %s", name)
	}
}

// noCloseWriter hides Close so that closing the Parquet file does not close
// the caller's io.Writer
type noCloseWriter struct {
	io.Writer
}

// newParquetWriter writes one row group per record batch. The Arrow schema
// is stored in the file metadata so column types survive a round trip.
func newParquetWriter(w io.Writer, config *WriterConfig, alloc memory.Allocator) (*arrowWriter, error) {
	codec, err := parquetCodec(config.Compression)
	if err != nil {
		return nil, err
	}

	aw := &arrowWriter{out: noCloseWriter{w}, config: config, format: Parquet, alloc: alloc}
	aw.openSink = func(as *arrow.Schema) (recordSink, error) {
		props := parquet.NewWriterProperties(
			parquet.WithCompression(codec),
			parquet.WithAllocator(alloc),
			parquet.WithMaxRowGroupLength(int64(config.BatchSize)),
		)
		arrowProps := pqarrow.NewArrowWriterProperties(
			pqarrow.WithAllocator(alloc),
			pqarrow.WithStoreSchema(),
		)
		fw, err := pqarrow.NewFileWriter(as, aw.out, props, arrowProps)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create parquet writer")
		}
		return fw, nil
	}
	return aw, nil
}
