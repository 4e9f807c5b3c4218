package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/schema"
)

func TestObserveBuild(t *testing.T) {
	acceptedBefore := testutil.ToFloat64(RowsAccepted)
	widthBefore := testutil.ToFloat64(RowsDropped.WithLabelValues(ReasonWidth))
	bytesBefore := testutil.ToFloat64(BytesProcessed)

	ObserveBuild(columnar.BuildStats{
		RowsScanned:  10,
		RowsAccepted: 7,
		DroppedWidth: 2,
		EmptyRows:    1,
		Duration:     time.Millisecond,
	}, 512)

	assert.Equal(t, acceptedBefore+7, testutil.ToFloat64(RowsAccepted))
	assert.Equal(t, widthBefore+2, testutil.ToFloat64(RowsDropped.WithLabelValues(ReasonWidth)))
	assert.Equal(t, bytesBefore+512, testutil.ToFloat64(BytesProcessed))
}

func TestObserveInference(t *testing.T) {
	before := testutil.ToFloat64(RowsScanned.WithLabelValues(PhaseInfer))

	ObserveInference(schema.Stats{RowsSampled: 500, Width: 4})

	assert.Equal(t, before+500, testutil.ToFloat64(RowsScanned.WithLabelValues(PhaseInfer)))
	assert.Equal(t, 4.0, testutil.ToFloat64(SchemaWidth))
}

func TestTimer(t *testing.T) {
	timer := NewTimer(PhaseLoad)
	assert.GreaterOrEqual(t, timer.Stop(), time.Duration(0))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(PhaseDuration), 1)
}

func TestWriteText(t *testing.T) {
	ObserveBuild(columnar.BuildStats{RowsAccepted: 1}, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf))
	assert.Contains(t, buf.String(), "sorer_rows_accepted_total")
	assert.Contains(t, buf.String(), `sorer_rows_dropped_total{reason="type"}`)
}
