package columnar

import (
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/schema"
	"github.com/yth/sorer/pkg/sor"
)

const initialRows = 1024

// Column holds the raw field spans of one schema column
type Column struct {
	typ   sor.Type
	spans []sor.ByteSpan
}

func newColumn(typ sor.Type, capacity int) *Column {
	return &Column{typ: typ, spans: make([]sor.ByteSpan, 0, capacity)}
}

// Type returns the column type
func (c *Column) Type() sor.Type { return c.typ }

// Len returns the number of rows in the column
func (c *Column) Len() int { return len(c.spans) }

// Span returns the raw span ('<' through '>') of row i
func (c *Column) Span(i int) (sor.ByteSpan, error) {
	if i < 0 || i >= len(c.spans) {
		return sor.ByteSpan{}, errors.Newf(errors.ErrorTypeIndexOutOfRange,
			"row %d out of range for column of %d rows", i, len(c.spans)).
			WithDetail("row", i).
			WithDetail("rows", len(c.spans))
	}
	return c.spans[i], nil
}

// Columnar is the column store for one build. All columns have the same
// length.
type Columnar struct {
	schema  *schema.Schema
	columns []*Column
	rows    int
}

// New creates an empty Columnar shaped by s
func New(s *schema.Schema) *Columnar {
	return newColumnar(s, initialRows)
}

func newColumnar(s *schema.Schema, capacity int) *Columnar {
	types := s.Types()
	c := &Columnar{
		schema:  s,
		columns: make([]*Column, len(types)),
	}
	for i, t := range types {
		c.columns[i] = newColumn(t, capacity)
	}
	return c
}

// Schema returns the schema the columns were built against
func (c *Columnar) Schema() *schema.Schema { return c.schema }

// Width returns the number of columns
func (c *Columnar) Width() int { return len(c.columns) }

// Rows returns the number of rows
func (c *Columnar) Rows() int { return c.rows }

// Column returns column i
func (c *Columnar) Column(i int) (*Column, error) {
	if i < 0 || i >= len(c.columns) {
		return nil, errors.Newf(errors.ErrorTypeIndexOutOfRange,
			"column %d out of range for width %d", i, len(c.columns)).
			WithDetail("column", i).
			WithDetail("width", len(c.columns))
	}
	return c.columns[i], nil
}

// appendRow adds one row. The caller has already checked that the row
// matches the schema, so every column grows together.
func (c *Columnar) appendRow(row sor.Row) {
	for i, f := range row.Fields {
		c.columns[i].spans = append(c.columns[i].spans, f.Span)
	}
	c.rows++
}

// Append adds every row of other after the rows of c. Both must have been
// built against equal schemas over the same buffer.
func (c *Columnar) Append(other *Columnar) error {
	if other == nil {
		return nil
	}
	if !c.schema.Equal(other.schema) {
		return errors.Newf(errors.ErrorTypeInvalidArgument,
			"cannot append columns with schema %s to %s", other.schema, c.schema)
	}
	for i, col := range other.columns {
		c.columns[i].spans = append(c.columns[i].spans, col.spans...)
	}
	c.rows += other.rows
	return nil
}

// MemoryUsage estimates the bytes held by the span index
func (c *Columnar) MemoryUsage() int64 {
	const spanSize = 16
	var total int64
	for _, col := range c.columns {
		total += int64(cap(col.spans)) * spanSize
	}
	return total
}
