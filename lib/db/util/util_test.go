package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()
	assert.Equal(t, 0, h.AverageSize())
	assert.Equal(t, 0, h.MedianEstimate())

	for i := 0; i < 9; i++ {
		h.AddSample(10) // first bucket
	}
	h.AddSample(2000) // (1K, 4K]

	assert.Equal(t, int64(10), h.GetCount())
	assert.Equal(t, (9*10+2000)/10, h.AverageSize())
	assert.Equal(t, 8, h.MedianEstimate())
	assert.Equal(t, (1024+4096)/2, h.GetPercentileEstimate(100))
	assert.Equal(t, 0, h.GetPercentileEstimate(101))

	h.AddSample(8 << 30) // larger than every boundary
	assert.Equal(t, (4<<30)*2, h.GetPercentileEstimate(100))

	h.Reset()
	assert.Equal(t, int64(0), h.GetCount())
}

func TestSpread(t *testing.T) {
	assert.Equal(t, Spread{}, NewSpread(nil))

	s := NewSpread([]float64{0, 2, 4, 2})
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 3, s.Used)
	assert.InDelta(t, 1.4142, s.StdDev, 0.001)
}

func TestHashString(t *testing.T) {
	assert.Equal(t, HashString("node-1", 0), HashString("node-1", 0))
	assert.NotEqual(t, HashString("node-1", 0), HashString("node-2", 0))
	assert.NotEqual(t, HashString("node-1", 0), HashString("node-1", 1))
}
