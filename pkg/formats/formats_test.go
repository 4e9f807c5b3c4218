package formats

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/schema"
	"github.com/yth/sorer/pkg/sor"
	"github.com/yth/sorer/pkg/testutil"
)

func table(t *testing.T, text string, s *schema.Schema) *columnar.Table {
	t.Helper()
	buf := testutil.Buffer(text)
	c, _, err := columnar.NewBuilder(testutil.TestLogger(t), columnar.Options{}).Build(buf, 0, buf.Len(), s)
	require.NoError(t, err)
	return columnar.NewTable(buf, c)
}

var mixed = testutil.Rows(
	`<1> <12> <2.5> <"hi there"> <>`,
	`<0> <> <7> <bob> <>`,
	`<1> <-3> <1e999> <""> <   >`,
)

var mixedSchema = schema.New(sor.Bool, sor.Int, sor.Float, sor.String, sor.Bottom)

func TestArrowSchema(t *testing.T) {
	as := ArrowSchema(mixedSchema)

	require.Equal(t, 5, as.NumFields())
	assert.Equal(t, "c0", as.Field(0).Name)
	assert.Equal(t, arrow.FixedWidthTypes.Boolean, as.Field(0).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, as.Field(1).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, as.Field(2).Type)
	assert.Equal(t, arrow.BinaryTypes.String, as.Field(3).Type)
	assert.Equal(t, arrow.NULL, as.Field(4).Type.ID())

	md := as.Field(1).Metadata
	idx := md.FindKey(TypeMetadataKey)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "INT", md.Values()[idx])
}

func TestArrowRoundTrip(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	var out bytes.Buffer
	w, err := newArrowWriterWithAllocator(&out, &WriterConfig{Format: Arrow, BatchSize: 2}, alloc)
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table(t, mixed, mixedSchema)))
	require.NoError(t, w.Close())
	assert.Equal(t, int64(3), w.RowsWritten())

	r, err := ipc.NewFileReader(bytes.NewReader(out.Bytes()), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 2, r.NumRecords(), "three rows in batches of two")

	first, err := r.Record(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.NumRows())

	bools := first.Column(0).(*array.Boolean)
	assert.True(t, bools.Value(0))
	assert.False(t, bools.Value(1))

	ints := first.Column(1).(*array.Int64)
	assert.Equal(t, int64(12), ints.Value(0))
	assert.True(t, ints.IsNull(1))

	floats := first.Column(2).(*array.Float64)
	assert.Equal(t, 7.0, floats.Value(1))

	strs := first.Column(3).(*array.String)
	assert.Equal(t, "hi there", strs.Value(0))
	assert.Equal(t, "bob", strs.Value(1))

	assert.Equal(t, 2, first.Column(4).NullN())

	second, err := r.Record(1)
	require.NoError(t, err)
	assert.Equal(t, "", second.Column(3).(*array.String).Value(0))
	assert.Equal(t, int64(-3), second.Column(1).(*array.Int64).Value(0))
}

func TestArrowCompressedAndEmpty(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, &WriterConfig{Format: Arrow, Compression: "zstd"})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := ipc.NewFileReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 0, r.NumRecords())
	assert.Equal(t, 0, r.Schema().NumFields())

	_, err = NewWriter(&out, &WriterConfig{Format: Arrow, Compression: "brotli"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestArrowRejectsSecondSchema(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, nil)
	require.NoError(t, err)

	require.NoError(t, w.WriteTable(table(t, "<1>\n", schema.New(sor.Int))))
	assert.Error(t, w.WriteTable(table(t, "<a>\n", schema.New(sor.String))))
	require.NoError(t, w.Close())
}

func TestJSONLines(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, &WriterConfig{Format: JSONLines})
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table(t, mixed, mixedSchema)))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `[true, 12, 2.5, "hi there", null]`, lines[0])
	assert.JSONEq(t, `[false, null, 7, "bob", null]`, lines[1])
	assert.JSONEq(t, `[true, -3, null, "", null]`, lines[2])
	assert.Equal(t, int64(3), w.RowsWritten())
	assert.Equal(t, JSONLines, w.Format())
}

func TestJSONLinesNumericPrefix(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, &WriterConfig{Format: JSONLines})
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table(t, testutil.Rows("<1 2>", "<4>"), schema.New(sor.Int))))

	assert.Equal(t, "[1]\n[4]\n", out.String())
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"arrow":   Arrow,
		"parquet": Parquet,
		"avro":    Avro,
		"jsonl":   JSONLines,
		"ndjson":  JSONLines,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))

	assert.Equal(t, ".arrow", FileExtension(Arrow))
	assert.Equal(t, ".parquet", FileExtension(Parquet))
	assert.Equal(t, ".avro", FileExtension(Avro))
	assert.Equal(t, "c12", ColumnName(12))
}

func TestParquetRoundTrip(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, &WriterConfig{Format: Parquet, Compression: "zstd"})
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table(t, mixed, mixedSchema)))
	require.NoError(t, w.Close())
	assert.Equal(t, int64(3), w.RowsWritten())
	assert.Equal(t, Parquet, w.Format())

	alloc := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(out.Bytes()),
		parquet.NewReaderProperties(alloc), pqarrow.ArrowReadProperties{}, alloc)
	require.NoError(t, err)
	defer tbl.Release()

	require.Equal(t, int64(3), tbl.NumRows())
	require.Equal(t, int64(5), tbl.NumCols())
	assert.Equal(t, "c3", tbl.Schema().Field(3).Name)

	ints := tbl.Column(1).Data().Chunk(0).(*array.Int64)
	assert.Equal(t, int64(12), ints.Value(0))
	assert.True(t, ints.IsNull(1))
	assert.Equal(t, int64(-3), ints.Value(2))

	strs := tbl.Column(3).Data().Chunk(0).(*array.String)
	assert.Equal(t, "hi there", strs.Value(0))
	assert.Equal(t, "bob", strs.Value(1))

	assert.Equal(t, 3, tbl.Column(4).Data().Chunk(0).NullN())
}

func TestParquetRejectsArrowCodec(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, &WriterConfig{Format: Parquet, Compression: "lz5"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestAvroSchema(t *testing.T) {
	s, err := AvroSchema(schema.New(sor.Int, sor.Bottom))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "record",
		"name": "SorRow",
		"fields": [
			{"name": "c0", "type": ["null", "long"], "default": null},
			{"name": "c1", "type": "null", "default": null}
		]
	}`, s)
}

func TestAvroRoundTrip(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, &WriterConfig{Format: Avro, BatchSize: 2, Compression: "deflate"})
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table(t, mixed, mixedSchema)))
	require.NoError(t, w.Close())
	assert.Equal(t, int64(3), w.RowsWritten())

	r, err := goavro.NewOCFReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)

	var rows []map[string]interface{}
	for r.Scan() {
		datum, err := r.Read()
		require.NoError(t, err)
		rows = append(rows, datum.(map[string]interface{}))
	}
	require.NoError(t, r.Err())
	require.Len(t, rows, 3)

	assert.Equal(t, map[string]interface{}{"boolean": true}, rows[0]["c0"])
	assert.Equal(t, map[string]interface{}{"long": int64(12)}, rows[0]["c1"])
	assert.Equal(t, map[string]interface{}{"double": 2.5}, rows[0]["c2"])
	assert.Equal(t, map[string]interface{}{"string": "hi there"}, rows[0]["c3"])
	assert.Nil(t, rows[0]["c4"])
	assert.Nil(t, rows[1]["c1"])
	assert.Equal(t, map[string]interface{}{"string": ""}, rows[2]["c3"])
}

func TestAvroRejectsUnknownCodec(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, &WriterConfig{Format: Avro, Compression: "zstd"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}
