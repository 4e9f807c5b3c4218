package formats

import (
	"io"
	"math"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/errors"
	jsonpool "github.com/yth/sorer/pkg/json"
	"github.com/yth/sorer/pkg/sor"
	stringpool "github.com/yth/sorer/pkg/strings"
)

// jsonLinesWriter writes each row as a JSON array: booleans, numbers and
// strings by column type, null for missing or non-finite fields
type jsonLinesWriter struct {
	enc  *jsonpool.LineEncoder
	rows int64
}

func newJSONLinesWriter(w io.Writer) *jsonLinesWriter {
	return &jsonLinesWriter{enc: jsonpool.NewLineEncoder(w)}
}

func (jw *jsonLinesWriter) WriteTable(t *columnar.Table) error {
	width := t.Columns.Width()
	line := make([]interface{}, width)

	for row := 0; row < t.Rows(); row++ {
		for col := 0; col < width; col++ {
			v, err := t.ValueAt(col, row)
			if err != nil {
				return err
			}
			line[col] = jsonValue(v)
		}
		if err := jw.enc.Encode(line); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write json line").WithDetail("row", row)
		}
		jw.rows++
	}
	return nil
}

func jsonValue(v columnar.Value) interface{} {
	if v.Missing || v.Type == sor.Bottom {
		return nil
	}
	switch v.Type {
	case sor.String:
		return stringpool.Unquote(v.Str)
	case sor.Float:
		// JSON has no infinities
		if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
			return nil
		}
	}
	return v.Interface()
}

func (jw *jsonLinesWriter) Close() error { return nil }

func (jw *jsonLinesWriter) Format() Format { return JSONLines }

func (jw *jsonLinesWriter) RowsWritten() int64 { return jw.rows }
