package pipeline

import (
	"github.com/yth/sorer/pkg/mmap"
	"github.com/yth/sorer/pkg/sor"
)

// Range is a half-open byte range [Start, End) whose bounds sit on row
// boundaries
type Range struct {
	Start, End int
}

// Len returns the number of bytes in the range
func (r Range) Len() int { return r.End - r.Start }

// SplitRange divides the row-aligned range [start, end) into at most workers
// contiguous chunks of at least minChunk bytes each. Every cut is moved
// forward to the next row start so no row is split. A range that cannot be
// split comes back as a single chunk; an empty range yields none.
func SplitRange(buf *sor.Buffer, start, end, workers, minChunk int) []Range {
	if end <= start {
		return nil
	}
	size := end - start
	if minChunk < 1 {
		minChunk = 1
	}
	n := workers
	if limit := size / minChunk; limit < n {
		n = limit
	}
	if n <= 1 {
		return []Range{{Start: start, End: end}}
	}

	chunks := make([]Range, 0, n)
	step := size / n
	lo := start
	for i := 1; i < n && lo < end; i++ {
		hi := mmap.NextRowStart(buf, start+i*step)
		if hi > end {
			hi = end
		}
		if hi <= lo {
			continue
		}
		chunks = append(chunks, Range{Start: lo, End: hi})
		lo = hi
	}
	if lo < end {
		chunks = append(chunks, Range{Start: lo, End: end})
	}
	return chunks
}
