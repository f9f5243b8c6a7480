package util

import (
	"math"
	"sync"
)

// ----------------------------------------------------------------------------
// Spread over logical databases
// ----------------------------------------------------------------------------

// Spread summarizes how evenly values (e.g. key counts) are spread over the
// logical databases of an engine.
type Spread struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_deviation"`
	Used   int     `json:"used"` // number of non-zero values
}

// NewSpread computes the spread of values (population standard deviation).
func NewSpread(values []float64) Spread {
	if len(values) == 0 {
		return Spread{}
	}

	s := Spread{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		if v != 0 {
			s.Used++
		}
	}
	s.Mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - s.Mean) * (v - s.Mean)
	}
	s.StdDev = math.Sqrt(sq / float64(len(values)))
	return s
}

// ----------------------------------------------------------------------------
// SizeHistogram
// ----------------------------------------------------------------------------

// sizeBoundaries are the upper bounds of the histogram buckets (16B to 4GB,
// growing by a factor of four). A final bucket holds everything larger.
var sizeBoundaries = []int{
	16, 64, 256, 1 << 10, 4 << 10,
	16 << 10, 64 << 10, 256 << 10, 1 << 20,
	4 << 20, 16 << 20, 64 << 20,
	256 << 20, 1 << 30, 4 << 30,
}

// SizeHistogram tracks the size distribution of written entries without
// keeping the samples. Safe for concurrent use.
type SizeHistogram struct {
	mutex   sync.RWMutex
	buckets []int64
	count   int64
	sum     int64
}

// NewSizeHistogram creates an empty histogram
func NewSizeHistogram() *SizeHistogram {
	return &SizeHistogram{
		buckets: make([]int64, len(sizeBoundaries)+1),
	}
}

// AddSample records one entry of the given size in bytes
func (h *SizeHistogram) AddSample(size int) {
	idx := len(sizeBoundaries)
	for i, boundary := range sizeBoundaries {
		if size <= boundary {
			idx = i
			break
		}
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.buckets[idx]++
	h.count++
	h.sum += int64(size)
}

// GetCount returns the number of recorded samples
func (h *SizeHistogram) GetCount() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// AverageSize returns the exact mean of all samples
func (h *SizeHistogram) AverageSize() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if h.count == 0 {
		return 0
	}
	return int(h.sum / h.count)
}

// MedianEstimate is GetPercentileEstimate(50)
func (h *SizeHistogram) MedianEstimate() int {
	return h.GetPercentileEstimate(50)
}

// GetPercentileEstimate estimates the given percentile (0-100) as the middle
// of the bucket it falls into. Returns 0 for an empty histogram or an invalid
// percentile.
func (h *SizeHistogram) GetPercentileEstimate(percentile int) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	var cumulative int64
	for i, n := range h.buckets {
		cumulative += n
		if cumulative >= target {
			return bucketMid(i)
		}
	}
	return int(h.sum / h.count)
}

// bucketMid returns a representative size for bucket i
func bucketMid(i int) int {
	switch {
	case i == 0:
		return sizeBoundaries[0] / 2
	case i < len(sizeBoundaries):
		return (sizeBoundaries[i-1] + sizeBoundaries[i]) / 2
	default:
		return sizeBoundaries[len(sizeBoundaries)-1] * 2
	}
}

// Reset clears all samples
func (h *SizeHistogram) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.count, h.sum = 0, 0
	clear(h.buckets)
}
