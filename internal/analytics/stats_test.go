package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	xs := []float64{4, 1, 3, 2}
	tests := []struct {
		p    float64
		want float64
	}{
		{p: 1, want: 1.03},
		{p: 50, want: 2.5},
		{p: 75, want: 3.25},
		{p: 100, want: 4},
	}
	for _, tt := range tests {
		got, err := percentile(xs, tt.p)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "p=%v", tt.p)
	}
	assert.Equal(t, []float64{4, 1, 3, 2}, xs, "input must not be reordered")
}

func TestPercentile_Errors(t *testing.T) {
	_, err := percentile([]float64{1, 2}, 0)
	assert.Error(t, err)
	_, err = percentile([]float64{1, 2}, 100.5)
	assert.Error(t, err)
	_, err = percentile(nil, 50)
	assert.Error(t, err)
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, sampleStdDev([]float64{42}))
	assert.InDelta(t, 2.138, sampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 0.001)
}

func TestCoefficientOfVariation_NonPositiveMean(t *testing.T) {
	assert.True(t, math.IsInf(coefficientOfVariation([]float64{0, 0}), 1))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.35, round2(2.346))
	assert.Equal(t, -1.5, round2(-1.499))
}

func TestParseRange(t *testing.T) {
	rng, err := parseRange("2025-07-01", "2025-07-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, rng.days())
	assert.Equal(t, time.Date(2025, 7, 1, 23, 59, 59, 999999999, time.UTC), rng.End)

	rng, err = parseRange("2025-07-01T08:00:00+05:30", "2025-07-02T09:00:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 2, 30, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC), rng.End, "timestamps are not widened")
	assert.Equal(t, 2, rng.days())
}

func TestParseRange_HonoursLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	rng, err := parseRange("2025-07-01", "2025-07-31", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 30, 18, 30, 0, 0, time.UTC), rng.Start.UTC())
	assert.Equal(t, 31, rng.days())
}

func TestDaysBetween_AcrossMonths(t *testing.T) {
	assert.Equal(t, 31, daysBetween(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC), time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)))
}
