package sor

import (
	"strconv"

	stringpool "github.com/yth/sorer/pkg/strings"
)

// TrimLeft returns the offset of the first non-space byte after span.Start,
// stopping at span.End. The byte at span.Start (the '<') is never examined.
func TrimLeft(buf *Buffer, span ByteSpan) int {
	i := span.Start + 1
	for ; i < span.End; i++ {
		if !stringpool.IsSpace(buf.At(i)) {
			break
		}
	}
	return i
}

// TrimRight returns the offset of the last non-space byte before span.End,
// stopping at span.Start. The byte at span.End (the '>') is never examined.
func TrimRight(buf *Buffer, span ByteSpan) int {
	i := span.End - 1
	for ; i > span.Start; i-- {
		if !stringpool.IsSpace(buf.At(i)) {
			break
		}
	}
	return i
}

// Trim narrows a raw field span to its content. ok is false when the field
// is empty or holds only whitespace.
func Trim(buf *Buffer, span ByteSpan) (ByteSpan, bool) {
	left := TrimLeft(buf, span)
	right := TrimRight(buf, span)
	if left > right {
		return span, false
	}
	return span.Narrow(left, right), true
}

// Classify returns the type of the raw field span (delimiters included)
func Classify(buf *Buffer, span ByteSpan) Type {
	content, ok := Trim(buf, span)
	if !ok {
		return Bottom
	}
	return ClassifyContent(buf, content)
}

// ClassifyContent returns the type of an already trimmed content span,
// trying the most restrictive type first.
func ClassifyContent(buf *Buffer, content ByteSpan) Type {
	b := buf.Slice(content)
	if len(b) == 0 {
		return Bottom
	}

	if b[0] == '"' {
		return String
	}
	if len(b) == 1 && (b[0] == '0' || b[0] == '1') {
		return Bool
	}

	s := stringpool.BytesToString(b)
	if isInt(s) {
		return Int
	}
	if isFloat(s) {
		return Float
	}
	if stringpool.ContainsSpace(b) {
		return Bottom
	}
	return String
}

// ClassifyRow assigns a type to every field of row
func ClassifyRow(buf *Buffer, row *Row) {
	for i := range row.Fields {
		row.Fields[i].Type = Classify(buf, row.Fields[i].Span)
	}
}

// isInt reports whether s is entirely a base-10 integer that fits in int64.
// Out-of-range integers fall through to the float check.
func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat reports whether s is entirely a floating-point literal, decimal or
// hexadecimal. Overflowing literals still count: the whole token was consumed.
func isFloat(s string) bool {
	_, n := ParseFloatPrefix(s)
	return n > 0 && n == len(s)
}
