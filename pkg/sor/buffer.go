package sor

// Buffer is a read-only byte source with an explicit logical length.
//
// The backing slice may extend past the logical length, as a page-padded
// memory mapping does. Offsets at or beyond the logical length, and any NUL
// byte, read as the end-of-input sentinel.
type Buffer struct {
	data []byte
	size int
}

// NewBuffer wraps data; the logical length is len(data)
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data, size: len(data)}
}

// NewPaddedBuffer wraps data whose first size bytes are the logical content.
// size is clamped to len(data).
func NewPaddedBuffer(data []byte, size int) *Buffer {
	if size > len(data) {
		size = len(data)
	}
	if size < 0 {
		size = 0
	}
	return &Buffer{data: data, size: size}
}

// Len returns the logical length
func (b *Buffer) Len() int {
	return b.size
}

// Valid reports whether offset i holds a readable, non-sentinel byte
func (b *Buffer) Valid(i int) bool {
	return i >= 0 && i < b.size && b.data[i] != 0
}

// At returns the byte at offset i, or 0 (the sentinel) outside the logical range
func (b *Buffer) At(i int) byte {
	if i < 0 || i >= b.size {
		return 0
	}
	return b.data[i]
}

// Slice returns the bytes covered by span, clipped to the logical range
func (b *Buffer) Slice(span ByteSpan) []byte {
	start, end := span.Start, span.End+1
	if start < 0 {
		start = 0
	}
	if end > b.size {
		end = b.size
	}
	if start >= end {
		return nil
	}
	return b.data[start:end]
}

// Bytes returns the logical content
func (b *Buffer) Bytes() []byte {
	return b.data[:b.size]
}
