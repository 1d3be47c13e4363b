package gamemetrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "PlaceRegular", "GameService")
	m.RecordOperationSuccess(ctx, "PlaceRegular", "GameService")
	m.RecordOperationDuration(ctx, "PlaceRegular", "GameService", 20*time.Millisecond)
	m.RecordBetPlaced(ctx, "regular")
	m.RecordBetPlaced(ctx, "regular")
	m.RecordBetRejected(ctx, "game_closed")
	m.RecordResolution(ctx, "winner")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.betsPlaced.WithLabelValues("regular")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.betsRejected.WithLabelValues("game_closed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("PlaceRegular", "GameService", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("winner")))
}

func TestNewPrometheusRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}
