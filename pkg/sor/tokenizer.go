package sor

import (
	"io"

	"github.com/yth/sorer/pkg/errors"
)

// ScanRow tokenizes the row starting at cursor, which must be the first byte
// of a row. It returns the row, the cursor of the following row, and an error.
//
// The row ends at a newline, a NUL byte, or the logical end of the buffer.
// next is the offset after the newline, or the offset of the sentinel when
// the input ends without one. At the sentinel ScanRow returns io.EOF.
//
// A '<' whose '>' is not found on the same line yields a malformed_field
// error together with a next cursor already past the offending line, so the
// caller can drop the row and keep going.
func ScanRow(buf *Buffer, cursor int) (Row, int, error) {
	if !buf.Valid(cursor) {
		return Row{Span: ByteSpan{Start: cursor, End: cursor}}, cursor, io.EOF
	}

	row := Row{Span: ByteSpan{Start: cursor, End: cursor}}
	i := cursor
	for buf.Valid(i) && buf.At(i) != '\n' {
		if buf.At(i) == '<' {
			end, ok := matchField(buf, i)
			if !ok {
				next := finishRow(buf, cursor, end, &row)
				return row, next, errors.New(errors.ErrorTypeMalformedField, "field has no closing '>' before end of row").
					WithDetail("row_start", cursor).
					WithDetail("field_start", i)
			}
			row.Fields = append(row.Fields, Field{Span: ByteSpan{Start: i, End: end}})
			i = end
		}
		i++
	}

	return row, finishRow(buf, cursor, i, &row), nil
}

// matchField scans forward from the '<' at start for its '>'. On failure it
// returns the offset of the newline or sentinel that interrupted the field.
func matchField(buf *Buffer, start int) (int, bool) {
	i := start + 1
	for buf.Valid(i) {
		switch buf.At(i) {
		case '>':
			return i, true
		case '\n':
			return i, false
		}
		i++
	}
	return i, false
}

// finishRow closes the row span at the terminator found at term and returns
// the next cursor.
func finishRow(buf *Buffer, cursor, term int, row *Row) int {
	if buf.Valid(term) {
		// newline
		row.Span.End = term
		return term + 1
	}
	if term > cursor {
		row.Span.End = term - 1
	}
	return term
}

// RowScanner iterates rows over [start, end) of a buffer. Rows starting
// before end are scanned to their terminator even when it lies beyond end.
//
// It is the only row iterator: schema inference and column building both use
// it, so the two passes see byte-for-byte identical rows.
type RowScanner struct {
	buf  *Buffer
	pos  int
	end  int
	row  Row
	err  error
	rows int
}

// NewRowScanner creates a scanner over [start, end)
func NewRowScanner(buf *Buffer, start, end int) *RowScanner {
	if end > buf.Len() {
		end = buf.Len()
	}
	if start < 0 {
		start = 0
	}
	return &RowScanner{buf: buf, pos: start, end: end}
}

// Next advances to the next row. It returns false at the end of the range.
func (s *RowScanner) Next() bool {
	if s.pos >= s.end || !s.buf.Valid(s.pos) {
		return false
	}

	row, next, err := ScanRow(s.buf, s.pos)
	if err == io.EOF {
		return false
	}
	s.row = row
	s.err = err
	s.pos = next
	s.rows++
	return true
}

// Row returns the current row
func (s *RowScanner) Row() Row {
	return s.row
}

// Err returns the row-level error of the current row, if any
func (s *RowScanner) Err() error {
	return s.err
}

// Offset returns the cursor of the next row
func (s *RowScanner) Offset() int {
	return s.pos
}

// Rows returns the number of rows scanned so far
func (s *RowScanner) Rows() int {
	return s.rows
}
