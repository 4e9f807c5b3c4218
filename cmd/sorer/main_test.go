package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yth/sorer/pkg/compression"
	"github.com/yth/sorer/pkg/errors"
	jsonpool "github.com/yth/sorer/pkg/json"
	"github.com/yth/sorer/pkg/testutil"
)

const data = `<0> <1> <"a"> <1.5>
<1> <-7> <hi> <>
<1> <12> <"b c"> <2>
`

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(normalizeLegacyArgs(args))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func dataFile(t *testing.T) string {
	return testutil.WriteFile(t, "data.sor", []byte(data))
}

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{
			[]string{"-f", "x.sor", "-from", "10", "-len", "20", "-print_col_type", "3"},
			[]string{"-f", "x.sor", "--from", "10", "--len", "20", "--print-col-type", "3"},
		},
		{
			[]string{"-f", "x.sor", "-print_col_idx", "2", "5"},
			[]string{"-f", "x.sor", "--print-col-idx", "2,5"},
		},
		{
			[]string{"-is_missing_idx", "1", "0", "--metrics"},
			[]string{"--is-missing-idx", "1,0", "--metrics"},
		},
		{
			[]string{"-print_col_idx", "2"},
			[]string{"--print-col-idx", "2"},
		},
		{
			[]string{"-len"},
			[]string{"--len"},
		},
		{
			[]string{"schema", "--file", "x.sor"},
			[]string{"schema", "--file", "x.sor"},
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLegacyArgs(tt.in))
	}
}

func TestPrintColType(t *testing.T) {
	path := dataFile(t)
	for col, want := range []string{"BOOL", "INT", "STRING", "FLOAT"} {
		out, _, err := execute(t, "-f", path, "-print_col_type", string(rune('0'+col)))
		require.NoError(t, err)
		assert.Equal(t, want+"\n", out)
	}
}

func TestPrintColIdx(t *testing.T) {
	path := dataFile(t)
	tests := []struct {
		col, row string
		want     string
	}{
		{"0", "0", "0"},
		{"0", "1", "1"},
		{"1", "1", "-7"},
		{"2", "0", `"a"`},
		{"2", "1", `"hi"`},
		{"2", "2", `"b c"`},
		{"3", "0", "1.5"},
		{"3", "2", "2"},
		{"3", "1", ""},
	}

	for _, tt := range tests {
		out, _, err := execute(t, "-f", path, "-print_col_idx", tt.col, tt.row)
		require.NoError(t, err)
		assert.Equal(t, tt.want+"\n", out, "col %s row %s", tt.col, tt.row)
	}
}

func TestIsMissingIdx(t *testing.T) {
	path := dataFile(t)

	out, _, err := execute(t, "-f", path, "-is_missing_idx", "3", "1")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, _, err = execute(t, "-f", path, "--is-missing-idx", "3,0")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestPrintColIdxReadsNumericPrefix(t *testing.T) {
	path := testutil.WriteFile(t, "prefix.sor", []byte("<5> <0x1A>\n<1 2> <2.5 m>\n"))

	out, _, err := execute(t, "-f", path, "-print_col_type", "1")
	require.NoError(t, err)
	assert.Equal(t, "FLOAT\n", out)

	out, _, err = execute(t, "-f", path, "-print_col_idx", "0", "1")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, _, err = execute(t, "-f", path, "-print_col_idx", "1", "0")
	require.NoError(t, err)
	assert.Equal(t, "26\n", out)

	out, _, err = execute(t, "-f", path, "-print_col_idx", "1", "1")
	require.NoError(t, err)
	assert.Equal(t, "2.5\n", out)
}

func TestRangeFlags(t *testing.T) {
	path := dataFile(t)

	// offset 5 is inside the first row, so the read starts at the second
	out, _, err := execute(t, "-f", path, "-from", "5", "-print_col_idx", "1", "0")
	require.NoError(t, err)
	assert.Equal(t, "-7\n", out)

	_, _, err = execute(t, "-f", path, "-from", "5", "-len", "20", "-print_col_idx", "1", "1")
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndexOutOfRange))
}

func TestArgumentErrors(t *testing.T) {
	path := dataFile(t)

	tests := []struct {
		name string
		args []string
		typ  errors.ErrorType
		msg  string
	}{
		{"bad column", []string{"-f", path, "-print_col_idx", "x", "1"}, errors.ErrorTypeInvalidArgument, "invalid numeric argument"},
		{"negative row", []string{"-f", path, "-is_missing_idx", "1", "-1"}, errors.ErrorTypeInvalidArgument, "invalid numeric argument"},
		{"bad from", []string{"-f", path, "-from", "1e3", "-print_col_type", "0"}, errors.ErrorTypeInvalidArgument, "invalid numeric argument for from"},
		{"missing row", []string{"-f", path, "-print_col_idx", "1"}, errors.ErrorTypeInvalidArgument, "expects COL,ROW"},
		{"two queries", []string{"-f", path, "-print_col_type", "0", "-print_col_idx", "1", "1"}, errors.ErrorTypeInvalidArgument, "only one of"},
		{"no file", []string{"-print_col_type", "0"}, errors.ErrorTypeInvalidArgument, "input file is required"},
		{"column out of range", []string{"-f", path, "-print_col_type", "9"}, errors.ErrorTypeIndexOutOfRange, ""},
		{"row out of range", []string{"-f", path, "-print_col_idx", "0", "9"}, errors.ErrorTypeIndexOutOfRange, ""},
		{"from past end", []string{"-f", path, "-from", "1000", "-print_col_idx", "0", "0"}, errors.ErrorTypeInvalidArgument, ""},
		{"missing file", []string{"-f", path + ".nope", "-print_col_type", "0"}, errors.ErrorTypeFile, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.typ), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNoQueryPrintsNothing(t *testing.T) {
	out, _, err := execute(t, "-f", dataFile(t))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestConfigFileAndEnv(t *testing.T) {
	path := dataFile(t)

	// a one-row sample sees 1 in column 1 and types it BOOL
	cfgPath := testutil.WriteFile(t, "sorer.yaml", []byte("inference:\n  sample_rows: 1\n"))
	out, _, err := execute(t, "-f", path, "--config", cfgPath, "-print_col_type", "1")
	require.NoError(t, err)
	assert.Equal(t, "BOOL\n", out)

	t.Setenv("SORER_SAMPLE_ROWS", "2")
	out, _, err = execute(t, "-f", path, "--config", cfgPath, "-print_col_type", "1")
	require.NoError(t, err)
	assert.Equal(t, "INT\n", out)

	// flags win over the environment
	out, _, err = execute(t, "-f", path, "--sample-rows", "1", "-print_col_type", "1")
	require.NoError(t, err)
	assert.Equal(t, "BOOL\n", out)
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := execute(t, "schema", "-f", dataFile(t), "--workers", "1")
	require.NoError(t, err)

	var report struct {
		Schema []string `json:"schema"`
		Rows   int      `json:"rows"`
		Bytes  int      `json:"bytes"`
		Build  struct {
			RowsAccepted int `json:"rows_accepted"`
		} `json:"build"`
	}
	require.NoError(t, jsonpool.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"BOOL", "INT", "STRING", "FLOAT"}, report.Schema)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, len(data), report.Bytes)
	assert.Equal(t, 3, report.Build.RowsAccepted)
}

func TestSchemaCommandCompressedInput(t *testing.T) {
	c, err := compression.NewCompressor(&compression.Config{Algorithm: compression.Gzip})
	require.NoError(t, err)
	packed, err := c.Compress([]byte(data))
	require.NoError(t, err)
	path := testutil.WriteFile(t, "data.sor.gz", packed)

	out, _, err := execute(t, "schema", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"compression": "gzip"`)
	assert.Contains(t, out, `"STRING"`)
}

func TestExportJSONLines(t *testing.T) {
	out, _, err := execute(t, "export", "-f", dataFile(t), "--format", "jsonl")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		`[false,1,"a",1.5]`,
		`[true,-7,"hi",null]`,
		`[true,12,"b c",2]`,
	}, lines)
}

func TestExportArrowCompressedFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.arrow.zst")
	out, _, err := execute(t, "export", "-f", dataFile(t),
		"--format", "arrow", "--output-compression", "zstd", "-o", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, compression.Zstd, compression.Sniff(written))

	c, err := compression.NewCompressor(&compression.Config{Algorithm: compression.Zstd})
	require.NoError(t, err)
	raw, err := c.Decompress(written)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("ARROW1")))
}

func TestExportParquetAndAvro(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		format string
		codec  string
		magic  string
	}{
		{"parquet", "snappy", "PAR1"},
		{"avro", "deflate", "Obj\x01"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dest := filepath.Join(dir, "out."+tt.format)
			_, _, err := execute(t, "export", "-f", dataFile(t),
				"--format", tt.format, "--codec", tt.codec, "-o", dest)
			require.NoError(t, err)

			written, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(written, []byte(tt.magic)))
		})
	}
}

func TestExportRejectsCodecForFormat(t *testing.T) {
	_, _, err := execute(t, "export", "-f", dataFile(t), "--format", "avro", "--codec", "lz4")
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "export", "-f", dataFile(t), "--format", "csv")
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestMetricsAndTracingFlags(t *testing.T) {
	_, stderr, err := execute(t, "-f", dataFile(t), "--metrics", "--trace", "-print_col_idx", "0", "0")
	require.NoError(t, err)
	assert.Contains(t, stderr, "sorer_rows_accepted_total")
	assert.Contains(t, stderr, "sorer.build")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sorer v"+version)
}
