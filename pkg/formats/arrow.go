package formats

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/schema"
	"github.com/yth/sorer/pkg/sor"
	stringpool "github.com/yth/sorer/pkg/strings"
)

// TypeMetadataKey holds the sor column type in each Arrow field's metadata
const TypeMetadataKey = "sor.type"

// ArrowSchema maps a sor schema to an Arrow schema. Columns are named c0,
// c1, ... and are all nullable; BOTTOM columns become the Arrow null type.
func ArrowSchema(s *schema.Schema) *arrow.Schema {
	types := s.Types()
	fields := make([]arrow.Field, len(types))
	for i, t := range types {
		md := arrow.NewMetadata([]string{TypeMetadataKey}, []string{t.String()})
		fields[i] = arrow.Field{
			Name:     ColumnName(i),
			Type:     arrowType(t),
			Nullable: true,
			Metadata: md,
		}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t sor.Type) arrow.DataType {
	switch t {
	case sor.Bool:
		return arrow.FixedWidthTypes.Boolean
	case sor.Int:
		return arrow.PrimitiveTypes.Int64
	case sor.Float:
		return arrow.PrimitiveTypes.Float64
	case sor.String:
		return arrow.BinaryTypes.String
	default:
		return arrow.Null
	}
}

// recordSink receives finished record batches. ipc.FileWriter and
// pqarrow.FileWriter both satisfy it.
type recordSink interface {
	Write(rec arrow.Record) error
	Close() error
}

// arrowWriter implements Writer for formats built from Arrow record batches:
// the Arrow IPC file format and Parquet. The sink is opened by the first
// WriteTable, once the schema is known.
type arrowWriter struct {
	out         io.Writer
	config      *WriterConfig
	format      Format
	alloc       memory.Allocator
	schema      *schema.Schema
	arrowSchema *arrow.Schema
	builder     *array.RecordBuilder
	sink        recordSink
	openSink    func(as *arrow.Schema) (recordSink, error)
	rows        int64
}

func newArrowWriter(w io.Writer, config *WriterConfig) (*arrowWriter, error) {
	return newArrowWriterWithAllocator(w, config, memory.NewGoAllocator())
}

func newArrowWriterWithAllocator(w io.Writer, config *WriterConfig, alloc memory.Allocator) (*arrowWriter, error) {
	var opts []ipc.Option
	switch config.Compression {
	case "", "none":
	case "lz4":
		opts = append(opts, ipc.WithLZ4())
	case "zstd":
		opts = append(opts, ipc.WithZstd())
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"unsupported arrow compression: %s", config.Compression)
	}

	aw := &arrowWriter{out: w, config: config, format: Arrow, alloc: alloc}
	aw.openSink = func(as *arrow.Schema) (recordSink, error) {
		fw, err := ipc.NewFileWriter(aw.out, append(opts, ipc.WithSchema(as), ipc.WithAllocator(aw.alloc))...)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create arrow writer")
		}
		return fw, nil
	}
	return aw, nil
}

func (aw *arrowWriter) open(s *schema.Schema) error {
	aw.schema = s
	aw.arrowSchema = ArrowSchema(s)
	aw.builder = array.NewRecordBuilder(aw.alloc, aw.arrowSchema)

	sink, err := aw.openSink(aw.arrowSchema)
	if err != nil {
		aw.builder.Release()
		aw.builder = nil
		return err
	}
	aw.sink = sink
	return nil
}

func (aw *arrowWriter) WriteTable(t *columnar.Table) error {
	if aw.sink == nil {
		if err := aw.open(t.Schema()); err != nil {
			return err
		}
	} else if !aw.schema.Equal(t.Schema()) {
		return errors.Newf(errors.ErrorTypeInvalidArgument,
			"table schema %s does not match %s", t.Schema(), aw.schema)
	}

	total := t.Rows()
	for start := 0; start < total; start += aw.config.BatchSize {
		end := start + aw.config.BatchSize
		if end > total {
			end = total
		}
		if err := aw.writeBatch(t, start, end); err != nil {
			return err
		}
	}
	return nil
}

// writeBatch appends rows [start, end) column by column and flushes them as
// one record batch
func (aw *arrowWriter) writeBatch(t *columnar.Table, start, end int) error {
	rec, err := buildRecord(aw.builder, t, start, end)
	if err != nil {
		return err
	}
	defer rec.Release()

	if err := aw.sink.Write(rec); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write %s record batch", aw.format)
	}
	aw.rows += rec.NumRows()
	return nil
}

// buildRecord fills b with rows [start, end) of t
func buildRecord(b *array.RecordBuilder, t *columnar.Table, start, end int) (arrow.Record, error) {
	for col := 0; col < b.Schema().NumFields(); col++ {
		fb := b.Field(col)
		fb.Reserve(end - start)
		for row := start; row < end; row++ {
			v, err := t.ValueAt(col, row)
			if err != nil {
				return nil, err
			}
			appendValue(fb, v)
		}
	}
	return b.NewRecord(), nil
}

// appendValue adds v to a builder created for its column type. Missing and
// BOTTOM values are null.
func appendValue(b array.Builder, v columnar.Value) {
	if v.Missing {
		b.AppendNull()
		return
	}
	switch bb := b.(type) {
	case *array.BooleanBuilder:
		bb.Append(v.Bool)
	case *array.Int64Builder:
		bb.Append(v.Int)
	case *array.Float64Builder:
		bb.Append(v.Float)
	case *array.StringBuilder:
		bb.Append(stringpool.Unquote(v.Str))
	default:
		b.AppendNull()
	}
}

func (aw *arrowWriter) Close() error {
	if aw.sink == nil {
		// nothing was written; emit a valid file with an empty schema
		if err := aw.open(schema.New()); err != nil {
			return err
		}
	}
	defer aw.builder.Release()

	if err := aw.sink.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to close %s writer", aw.format)
	}
	return nil
}

func (aw *arrowWriter) Format() Format { return aw.format }

func (aw *arrowWriter) RowsWritten() int64 { return aw.rows }
