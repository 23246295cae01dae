package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rms(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s / float64(len(x)))
}

func TestFilterBank_PassbandPreserved(t *testing.T) {
	fb := NewFilterBank(0.5, 40.0, 50.0, 30.0)
	fs := 130.0
	x := sine(10.0, fs, int(fs*10))

	y := fb.Apply(x, fs)
	require.Equal(t, len(x), len(y))

	// 10 Hz 在带通中心，幅度基本不变
	ratio := rms(y) / rms(x)
	assert.Greater(t, ratio, 0.8)
	assert.Less(t, ratio, 1.2)
}

func TestFilterBank_DCRemoved(t *testing.T) {
	fb := NewFilterBank(0.5, 40.0, 50.0, 30.0)
	fs := 130.0

	x := make([]float64, int(fs*10))
	for i := range x {
		x[i] = 500.0
	}

	y := fb.Apply(x, fs)
	assert.Less(t, rms(y), 1.0)
}

func TestFilterBank_NotchAttenuatesMains(t *testing.T) {
	fb := NewFilterBank(0.5, 40.0, 50.0, 30.0)
	fs := 130.0
	x := sine(50.0, fs, int(fs*10))

	y := fb.Apply(x, fs)
	assert.Less(t, rms(y)/rms(x), 0.2)
}

func TestFilterBank_ShortWindowReturnsCopy(t *testing.T) {
	fb := NewFilterBank(0.5, 40.0, 50.0, 30.0)
	fs := 130.0
	x := []float64{1, 2, 3}

	y := fb.Apply(x, fs)
	assert.Equal(t, x, y)

	// 返回的是拷贝而非别名
	y[0] = 99
	assert.Equal(t, 1.0, x[0])
}

func TestFilterBank_LowSamplingRateDoesNotBlowUp(t *testing.T) {
	// 带通上限超过 Nyquist 时截止被压到 0.45·fs，陷波被跳过
	fb := NewFilterBank(0.5, 40.0, 50.0, 30.0)
	fs := 60.0
	x := sine(5.0, fs, int(fs*10))

	y := fb.Apply(x, fs)
	require.Equal(t, len(x), len(y))
	for _, v := range y {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
	assert.Greater(t, rms(y)/rms(x), 0.5)
}

func TestFilterBank_CacheReused(t *testing.T) {
	fb := NewFilterBank(0.5, 40.0, 50.0, 30.0)
	fs := 130.0
	x := sine(10.0, fs, int(fs*4))

	y1 := fb.Apply(x, fs)
	y2 := fb.Apply(x, fs)
	assert.Equal(t, y1, y2)
	assert.Len(t, fb.cache, 1)
}

func TestFiltfilt_ZeroPhase(t *testing.T) {
	// 零相位滤波：对称脉冲经低通后峰位不移动
	fs := 130.0
	n := int(fs * 4)
	center := n / 2
	x := make([]float64, n)
	for i := range x {
		d := float64(i - center)
		x[i] = math.Exp(-d * d / (2 * 25))
	}

	q := lowpassBiquad(20.0, fs, 0.7071)
	y := filtfilt(q, x)

	iMax := 0
	for i := range y {
		if y[i] > y[iMax] {
			iMax = i
		}
	}
	assert.InDelta(t, center, iMax, 2)
}
