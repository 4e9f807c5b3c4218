package formats

import (
	"io"

	"github.com/linkedin/goavro/v2"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/errors"
	jsonpool "github.com/yth/sorer/pkg/json"
	"github.com/yth/sorer/pkg/schema"
	"github.com/yth/sorer/pkg/sor"
	stringpool "github.com/yth/sorer/pkg/strings"
)

// AvroRecordName is the name of the Avro record type holding one row
const AvroRecordName = "SorRow"

type avroField struct {
	Name    string      `json:"name"`
	Type    interface{} `json:"type"`
	Default interface{} `json:"default"`
}

type avroRecord struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

// avroType returns the Avro primitive for t. BOTTOM maps to "null".
func avroType(t sor.Type) string {
	switch t {
	case sor.Bool:
		return "boolean"
	case sor.Int:
		return "long"
	case sor.Float:
		return "double"
	case sor.String:
		return "string"
	default:
		return "null"
	}
}

// AvroSchema returns the Avro record schema for s as JSON. Each column c<i>
// is a union of null and its type so missing values can be written.
func AvroSchema(s *schema.Schema) (string, error) {
	types := s.Types()
	rec := avroRecord{Type: "record", Name: AvroRecordName, Fields: make([]avroField, len(types))}
	for i, t := range types {
		f := avroField{Name: ColumnName(i)}
		if t == sor.Bottom {
			f.Type = "null"
		} else {
			f.Type = []string{"null", avroType(t)}
		}
		rec.Fields[i] = f
	}
	b, err := jsonpool.Marshal(rec)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeData, "failed to encode avro schema")
	}
	return string(b), nil
}

// avroWriter implements Writer for Avro object container files. The
// container header needs the schema, so it is written by the first
// WriteTable.
type avroWriter struct {
	out    io.Writer
	config *WriterConfig
	codec  string
	schema *schema.Schema
	ocf    *goavro.OCFWriter
	block  []interface{}
	rows   int64
}

func newAvroWriter(w io.Writer, config *WriterConfig) (*avroWriter, error) {
	var codec string
	switch config.Compression {
	case "", "none":
		codec = goavro.CompressionNullLabel
	case "deflate":
		codec = goavro.CompressionDeflateLabel
	case "snappy":
		codec = goavro.CompressionSnappyLabel
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
			"unsupported avro compression: %s", config.Compression)
	}
	return &avroWriter{out: w, config: config, codec: codec}, nil
}

func (aw *avroWriter) open(s *schema.Schema) error {
	avroSchema, err := AvroSchema(s)
	if err != nil {
		return err
	}
	codec, err := goavro.NewCodec(avroSchema)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to create avro codec")
	}
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               aw.out,
		Codec:           codec,
		CompressionName: aw.codec,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create avro writer")
	}
	aw.schema = s
	aw.ocf = ocf
	return nil
}

func (aw *avroWriter) WriteTable(t *columnar.Table) error {
	if aw.ocf == nil {
		if err := aw.open(t.Schema()); err != nil {
			return err
		}
	} else if !aw.schema.Equal(t.Schema()) {
		return errors.Newf(errors.ErrorTypeInvalidArgument,
			"table schema %s does not match %s", t.Schema(), aw.schema)
	}

	width := t.Columns.Width()
	for row := 0; row < t.Rows(); row++ {
		native := make(map[string]interface{}, width)
		for col := 0; col < width; col++ {
			v, err := t.ValueAt(col, row)
			if err != nil {
				return err
			}
			native[ColumnName(col)] = avroValue(v)
		}
		aw.block = append(aw.block, native)
		if len(aw.block) >= aw.config.BatchSize {
			if err := aw.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// avroValue returns the goavro native form of v: nil for missing and BOTTOM
// values, otherwise a union branch named by the column type
func avroValue(v columnar.Value) interface{} {
	if v.Missing || v.Type == sor.Bottom {
		return nil
	}
	switch v.Type {
	case sor.Bool:
		return goavro.Union("boolean", v.Bool)
	case sor.Int:
		return goavro.Union("long", v.Int)
	case sor.Float:
		return goavro.Union("double", v.Float)
	default:
		return goavro.Union("string", stringpool.Unquote(v.Str))
	}
}

// flush writes the pending rows as one container block
func (aw *avroWriter) flush() error {
	if len(aw.block) == 0 {
		return nil
	}
	if err := aw.ocf.Append(aw.block); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write avro block")
	}
	aw.rows += int64(len(aw.block))
	aw.block = aw.block[:0]
	return nil
}

func (aw *avroWriter) Close() error {
	if aw.ocf == nil {
		// nothing was written; emit a header for an empty record
		return aw.open(schema.New())
	}
	return aw.flush()
}

func (aw *avroWriter) Format() Format { return Avro }

func (aw *avroWriter) RowsWritten() int64 { return aw.rows }
