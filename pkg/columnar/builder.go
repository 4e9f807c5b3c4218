package columnar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/logger"
	"github.com/yth/sorer/pkg/schema"
	"github.com/yth/sorer/pkg/sor"
)

// cancellation is polled once per this many rows
const checkEvery = 4096

// Options configures a Builder
type Options struct {
	// FailOnMalformed aborts the build at the first field without a closing
	// '>' instead of dropping the row.
	FailOnMalformed bool
}

// BuildStats counts what happened to every row scanned by a build
type BuildStats struct {
	RowsScanned      int           `json:"rows_scanned"`
	RowsAccepted     int           `json:"rows_accepted"`
	DroppedWidth     int           `json:"dropped_width"`
	DroppedType      int           `json:"dropped_type"`
	DroppedMalformed int           `json:"dropped_malformed"`
	EmptyRows        int           `json:"empty_rows"`
	Duration         time.Duration `json:"duration"`
}

// Dropped returns the number of rows that were rejected
func (s BuildStats) Dropped() int {
	return s.DroppedWidth + s.DroppedType + s.DroppedMalformed + s.EmptyRows
}

// Add accumulates other into s. Durations are summed.
func (s *BuildStats) Add(other BuildStats) {
	s.RowsScanned += other.RowsScanned
	s.RowsAccepted += other.RowsAccepted
	s.DroppedWidth += other.DroppedWidth
	s.DroppedType += other.DroppedType
	s.DroppedMalformed += other.DroppedMalformed
	s.EmptyRows += other.EmptyRows
	s.Duration += other.Duration
}

// Builder fills a Columnar from a byte range of a buffer
type Builder struct {
	logger *zap.Logger
	opts   Options
}

// NewBuilder creates a builder. A nil logger disables logging.
func NewBuilder(log *zap.Logger, opts Options) *Builder {
	return &Builder{logger: logger.OrNop(log), opts: opts}
}

// Build scans the rows starting in [start, end) and stores those that match s
func (b *Builder) Build(buf *sor.Buffer, start, end int, s *schema.Schema) (*Columnar, BuildStats, error) {
	return b.BuildContext(context.Background(), buf, start, end, s)
}

// BuildContext is Build with cancellation
func (b *Builder) BuildContext(ctx context.Context, buf *sor.Buffer, start, end int, s *schema.Schema) (*Columnar, BuildStats, error) {
	var stats BuildStats
	if buf == nil || s == nil {
		return nil, stats, errors.New(errors.ErrorTypeInvalidArgument, "buffer and schema are required")
	}
	if start < 0 || end < start || start > buf.Len() {
		return nil, stats, errors.Newf(errors.ErrorTypeInvalidArgument,
			"invalid build range [%d, %d) for buffer of %d bytes", start, end, buf.Len())
	}

	began := time.Now()
	types := s.Types()
	out := newColumnar(s, estimateRows(start, end))

	scanner := sor.NewRowScanner(buf, start, end)
	for scanner.Next() {
		stats.RowsScanned++
		if stats.RowsScanned%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		row := scanner.Row()
		if err := scanner.Err(); err != nil {
			if b.opts.FailOnMalformed || !errors.IsRowLevel(err) {
				return nil, stats, err
			}
			stats.DroppedMalformed++
			b.logger.Debug("dropping malformed row", zap.Int("offset", row.Span.Start), zap.Error(err))
			continue
		}

		if row.Width() == 0 {
			stats.EmptyRows++
			continue
		}

		if err := check(buf, &row, types); err != nil {
			switch errors.TypeOf(err) {
			case errors.ErrorTypeSchemaWidthExceeded:
				stats.DroppedWidth++
			default:
				stats.DroppedType++
			}
			b.logger.Debug("dropping row", zap.Int("offset", row.Span.Start), zap.Error(err))
			continue
		}

		out.appendRow(row)
		stats.RowsAccepted++
	}

	stats.Duration = time.Since(began)
	b.logger.Debug("range built",
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Int("rows_accepted", stats.RowsAccepted),
		zap.Int("rows_dropped", stats.Dropped()))

	return out, stats, nil
}

// check classifies the fields of row and reports why it cannot be stored
func check(buf *sor.Buffer, row *sor.Row, types []sor.Type) error {
	if row.Width() != len(types) {
		return errors.Newf(errors.ErrorTypeSchemaWidthExceeded,
			"row has %d fields, schema has %d", row.Width(), len(types))
	}
	sor.ClassifyRow(buf, row)
	for i, f := range row.Fields {
		if !f.Type.Fits(types[i]) {
			return errors.Newf(errors.ErrorTypeTypeIncompatible,
				"field %d is %s, column is %s", i, f.Type, types[i]).
				WithDetail("column", i)
		}
	}
	return nil
}

// estimateRows guesses a column capacity for a range, assuming short rows
func estimateRows(start, end int) int {
	const bytesPerRow = 32
	n := (end - start) / bytesPerRow
	if n < 16 {
		return 16
	}
	if n > initialRows*64 {
		return initialRows * 64
	}
	return n
}
