package schema

import (
	"time"

	"go.uber.org/zap"

	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/logger"
	"github.com/yth/sorer/pkg/sor"
)

// DefaultSampleRows is the number of leading rows examined by inference
const DefaultSampleRows = 500

// Options configures an Inferencer
type Options struct {
	// SampleRows bounds the number of rows examined. Zero means DefaultSampleRows.
	SampleRows int
}

// Stats describes one inference pass
type Stats struct {
	RowsSampled   int           `json:"rows_sampled"`
	EmptyRows     int           `json:"empty_rows"`
	MalformedRows int           `json:"malformed_rows"`
	Width         int           `json:"width"`
	Duration      time.Duration `json:"duration"`
}

// Inferencer derives a Schema from the head of a buffer
type Inferencer struct {
	logger     *zap.Logger
	sampleRows int
}

// NewInferencer creates an inferencer. A nil logger disables logging.
func NewInferencer(log *zap.Logger, opts Options) *Inferencer {
	sample := opts.SampleRows
	if sample <= 0 {
		sample = DefaultSampleRows
	}
	return &Inferencer{
		logger:     logger.OrNop(log),
		sampleRows: sample,
	}
}

// SampleRows returns the configured sample size
func (inf *Inferencer) SampleRows() int {
	return inf.sampleRows
}

// Infer scans up to SampleRows rows from the start of buf and returns the
// widest schema consistent with them.
//
// Every sampled row counts toward the limit, including empty and malformed
// ones. A wider row extends the schema with BOTTOM columns before its fields
// are folded in. Column types only ever widen, and a BOTTOM field never
// changes a column. Columns that have reached STRING are not classified
// again.
func (inf *Inferencer) Infer(buf *sor.Buffer) (*Schema, Stats, error) {
	if buf == nil {
		return nil, Stats{}, errors.New(errors.ErrorTypeInvalidArgument, "nil buffer")
	}

	start := time.Now()
	var (
		types []sor.Type
		stats Stats
	)

	scanner := sor.NewRowScanner(buf, 0, buf.Len())
	for stats.RowsSampled < inf.sampleRows && scanner.Next() {
		stats.RowsSampled++

		if err := scanner.Err(); err != nil {
			if !errors.IsRowLevel(err) {
				return nil, stats, err
			}
			stats.MalformedRows++
			inf.logger.Debug("skipping malformed row during inference",
				zap.Int("row", stats.RowsSampled-1),
				zap.Error(err))
			continue
		}

		row := scanner.Row()
		if row.Width() == 0 {
			stats.EmptyRows++
			continue
		}
		types = fold(buf, types, row)
	}

	stats.Width = len(types)
	stats.Duration = time.Since(start)

	inf.logger.Info("schema inferred",
		zap.Int("rows_sampled", stats.RowsSampled),
		zap.Int("width", stats.Width),
		zap.Int("malformed_rows", stats.MalformedRows),
		zap.Duration("duration", stats.Duration))

	return &Schema{types: types}, stats, nil
}

// fold widens types with the fields of row, extending it when the row is wider
func fold(buf *sor.Buffer, types []sor.Type, row sor.Row) []sor.Type {
	for len(types) < row.Width() {
		types = append(types, sor.Bottom)
	}
	for i, f := range row.Fields {
		if types[i] == sor.String {
			continue
		}
		types[i] = sor.Widen(types[i], sor.Classify(buf, f.Span))
	}
	return types
}
