package columnar

import (
	"github.com/yth/sorer/pkg/schema"
	"github.com/yth/sorer/pkg/sor"
	stringpool "github.com/yth/sorer/pkg/strings"
)

// ColumnType returns the type of column col of s
func ColumnType(s *schema.Schema, col int) (sor.Type, error) {
	return s.Type(col)
}

// IsMissing reports whether the field at (col, row) is empty: either "<>" or
// only whitespace between the delimiters
func IsMissing(buf *sor.Buffer, c *Columnar, col, row int) (bool, error) {
	span, _, err := locate(c, col, row)
	if err != nil {
		return false, err
	}
	_, ok := sor.Trim(buf, span)
	return !ok, nil
}

// ValueAt decodes the field at (col, row) according to its column type.
//
// STRING values are returned in quoted form: a bare token gains surrounding
// quotes, a quoted one is returned unchanged. Numeric columns read the
// longest numeric prefix of the field and BOOL columns its first byte, so a
// token that only fits its column as BOTTOM, such as "1 2" in an INT column,
// still decodes (to 1). Only index errors are returned.
func ValueAt(buf *sor.Buffer, c *Columnar, col, row int) (Value, error) {
	span, typ, err := locate(c, col, row)
	if err != nil {
		return Value{}, err
	}

	content, ok := sor.Trim(buf, span)
	if !ok {
		return Value{Type: typ, Missing: true}, nil
	}

	return decode(buf.Slice(content), typ), nil
}

func locate(c *Columnar, col, row int) (sor.ByteSpan, sor.Type, error) {
	column, err := c.Column(col)
	if err != nil {
		return sor.ByteSpan{}, sor.Bottom, err
	}
	span, err := column.Span(row)
	if err != nil {
		return sor.ByteSpan{}, sor.Bottom, err
	}
	return span, column.Type(), nil
}

// decode reads non-empty trimmed content as typ. Text after a numeric
// prefix is ignored; no prefix reads as zero.
func decode(b []byte, typ sor.Type) Value {
	v := Value{Type: typ}
	switch typ {
	case sor.Bool:
		v.Bool = b[0] == '1'
	case sor.Int:
		v.Int, _ = sor.ParseIntPrefix(stringpool.BytesToString(b))
	case sor.Float:
		v.Float, _ = sor.ParseFloatPrefix(stringpool.BytesToString(b))
	case sor.String:
		v.Str = stringpool.Quote(string(b))
	default:
		v.Str = string(b)
	}
	return v
}

// Table pairs a Columnar with the buffer its spans point into
type Table struct {
	Buffer  *sor.Buffer
	Columns *Columnar
}

// NewTable creates a table view
func NewTable(buf *sor.Buffer, c *Columnar) *Table {
	return &Table{Buffer: buf, Columns: c}
}

// Schema returns the table schema
func (t *Table) Schema() *schema.Schema { return t.Columns.Schema() }

// Rows returns the number of rows
func (t *Table) Rows() int { return t.Columns.Rows() }

// ColumnType returns the type of column col
func (t *Table) ColumnType(col int) (sor.Type, error) {
	return ColumnType(t.Columns.Schema(), col)
}

// ValueAt decodes the field at (col, row)
func (t *Table) ValueAt(col, row int) (Value, error) {
	return ValueAt(t.Buffer, t.Columns, col, row)
}

// IsMissing reports whether the field at (col, row) is empty
func (t *Table) IsMissing(col, row int) (bool, error) {
	return IsMissing(t.Buffer, t.Columns, col, row)
}

// RowIterator walks the decoded rows of a table
type RowIterator struct {
	table *Table
	index int
	row   []Value
	err   error
}

// NewIterator creates an iterator positioned before the first row
func (t *Table) NewIterator() *RowIterator {
	return &RowIterator{table: t, index: -1}
}

// Next decodes the next row. It returns false when the rows are exhausted or
// a lookup fails.
func (it *RowIterator) Next() bool {
	if it.err != nil || it.index+1 >= it.table.Rows() {
		return false
	}
	it.index++

	width := it.table.Columns.Width()
	if cap(it.row) < width {
		it.row = make([]Value, width)
	}
	it.row = it.row[:width]
	for col := 0; col < width; col++ {
		v, err := it.table.ValueAt(col, it.index)
		if err != nil {
			it.err = err
			return false
		}
		it.row[col] = v
	}
	return true
}

// Row returns the current row. The slice is reused by the next call to Next.
func (it *RowIterator) Row() []Value { return it.row }

// Index returns the current row index
func (it *RowIterator) Index() int { return it.index }

// Err returns the error that stopped iteration, if any
func (it *RowIterator) Err() error { return it.err }
