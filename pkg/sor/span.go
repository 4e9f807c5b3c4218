package sor

import (
	"github.com/yth/sorer/pkg/errors"
)

// ByteSpan is an inclusive [Start, End] byte range into a Buffer.
// For a field, Start is the offset of '<' and End the offset of '>'.
type ByteSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewByteSpan validates and returns a span
func NewByteSpan(start, end int) (ByteSpan, error) {
	if start < 0 || end < start {
		return ByteSpan{}, errors.Newf(errors.ErrorTypeInvalidArgument, "invalid span [%d, %d]", start, end)
	}
	return ByteSpan{Start: start, End: end}, nil
}

// Width returns End - Start. A bare "<>" field has width 1.
func (s ByteSpan) Width() int {
	return s.End - s.Start
}

// Len returns the number of bytes covered by the span
func (s ByteSpan) Len() int {
	return s.End - s.Start + 1
}

// Narrow returns a copy moved inward to [start, end]. Bounds that would
// widen the span are ignored.
func (s ByteSpan) Narrow(start, end int) ByteSpan {
	if start > s.Start {
		s.Start = start
	}
	if end < s.End {
		s.End = end
	}
	return s
}

// Field is one '<'...'>' token of a row
type Field struct {
	Span ByteSpan
	Type Type
}

// Row is one line of input. Rows are transient: they live for a single
// inference or build pass.
type Row struct {
	Span   ByteSpan
	Fields []Field
}

// Width returns the number of fields in the row
func (r Row) Width() int {
	return len(r.Fields)
}
