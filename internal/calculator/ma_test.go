package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage(t *testing.T) {
	ma, err := MovingAverage(table(1, 2, 3, 4, 5), 3)
	require.NoError(t, err)
	require.Equal(t, 3, ma.Len())

	want := []float64{2, 3, 4}
	for i, w := range want {
		assert.InDelta(t, w, ma.At(i).Value, 1e-10)
	}
	// Each point is dated like the last observation of its window.
	assert.True(t, ma.At(0).Date.Equal(day(2025, 1, 3)))
	assert.True(t, ma.At(2).Date.Equal(day(2025, 1, 5)))
}

func TestMovingAverage_PeriodOne(t *testing.T) {
	ma, err := MovingAverage(table(3, 1, 4), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 4}, ma.Values())
}

func TestMovingAverage_ShortTable(t *testing.T) {
	ma, err := MovingAverage(table(1, 2), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, ma.Len())
}

func TestMovingAverage_InvalidPeriod(t *testing.T) {
	for _, p := range []int{0, -1} {
		_, err := MovingAverage(table(1, 2, 3), p)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	}
}
