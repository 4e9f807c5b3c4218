package mmap

import (
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/sor"
)

// AlignRange turns the byte window [from, from+length) into a range whose
// ends sit on row boundaries.
//
// The start moves forward to the beginning of the next row unless it is
// already at one. The end moves backward to the end of the last row that
// finishes inside the window, unless the window reaches the end of the
// buffer. A window shorter than one row yields an empty range.
func AlignRange(buf *sor.Buffer, from, length int) (int, int, error) {
	size := buf.Len()
	if from < 0 || length < 0 {
		return 0, 0, errors.Newf(errors.ErrorTypeInvalidArgument,
			"negative range: from %d, length %d", from, length)
	}
	if from > 0 && from >= size {
		return 0, 0, errors.Newf(errors.ErrorTypeInvalidArgument,
			"start offset %d is beyond the end of the input (%d bytes)", from, size).
			WithDetail("from", from).
			WithDetail("size", size)
	}

	end := size
	if length < size-from {
		end = from + length
	}

	start := NextRowStart(buf, from)
	if end < size {
		end = PrevRowStart(buf, end)
	}
	if end < start {
		end = start
	}
	return start, end, nil
}

// NextRowStart returns off if a row starts there, otherwise the offset just
// past the next newline. It returns the buffer length (or the offset of an
// earlier NUL) when no further row exists.
func NextRowStart(buf *sor.Buffer, off int) int {
	if off <= 0 {
		return 0
	}
	if buf.At(off-1) == '\n' {
		return off
	}
	i := off
	for buf.Valid(i) && buf.At(i) != '\n' {
		i++
	}
	if buf.Valid(i) {
		return i + 1
	}
	return i
}

// PrevRowStart returns off if a row starts there, otherwise the offset just
// past the last newline before off, or 0 when there is none.
func PrevRowStart(buf *sor.Buffer, off int) int {
	for i := off - 1; i >= 0; i-- {
		if buf.At(i) == '\n' {
			return i + 1
		}
	}
	return 0
}
