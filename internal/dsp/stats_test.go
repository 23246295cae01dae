package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-3, 0, 1))
	assert.Equal(t, 1.0, Clamp(7, 0, 1))
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	x := []float64{1, 2, 3, 4}

	// 与 numpy.percentile 的线性插值一致
	assert.InDelta(t, 1.0, Percentile(x, 0), 1e-12)
	assert.InDelta(t, 2.5, Percentile(x, 50), 1e-12)
	assert.InDelta(t, 4.0, Percentile(x, 100), 1e-12)
	assert.InDelta(t, 1.75, Percentile(x, 25), 1e-12)
}

func TestPercentile_UnsortedInput(t *testing.T) {
	x := []float64{9, 1, 5}
	assert.InDelta(t, 5.0, Percentile(x, 50), 1e-12)
	// 原切片不被重排
	assert.Equal(t, []float64{9, 1, 5}, x)
}

func TestPercentile_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 3.0, Median([]float64{1, 3, 5}), 1e-12)
	assert.InDelta(t, 2.0, Median([]float64{1, 3}), 1e-12)
}

func TestMAD(t *testing.T) {
	// median = 3, |x-3| = {2,1,0,1,2}, MAD = 1
	assert.InDelta(t, 1.0, MAD([]float64{1, 2, 3, 4, 5}), 1e-12)

	// 常数序列 MAD = 0
	assert.InDelta(t, 0.0, MAD([]float64{7, 7, 7, 7}), 1e-12)
}
