package dsp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticECG 生成高斯尖峰 + 白噪声的模拟 ECG（计数刻度）
//
// beatTimes 为各心搏时刻（秒）。
func syntheticECG(beatTimes []float64, fs, durationSec, amplitude, noiseSD float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	n := int(durationSec * fs)
	x := make([]float64, n)

	const widthSec = 0.012
	for i := range x {
		t := float64(i) / fs
		for _, bt := range beatTimes {
			d := t - bt
			if d > -0.1 && d < 0.1 {
				x[i] += amplitude * math.Exp(-d*d/(2*widthSec*widthSec))
			}
		}
		x[i] += rng.NormFloat64() * noiseSD
	}
	return x
}

// regularBeats 等间隔心搏时刻
func regularBeats(intervalSec, startSec, durationSec float64) []float64 {
	var beats []float64
	for t := startSec; t < durationSec-0.2; t += intervalSec {
		beats = append(beats, t)
	}
	return beats
}

func TestQRSDetector_RegularRhythm(t *testing.T) {
	fs := 130.0
	duration := 30.0
	beats := regularBeats(0.8, 0.5, duration) // 75 bpm

	ecg := syntheticECG(beats, fs, duration, 4000, 0, 1)

	d := NewQRSDetector(0.25, 0.6)
	peaks := d.Detect(ecg, fs)

	require.NotEmpty(t, peaks)
	assert.InDelta(t, len(beats), len(peaks), 1)

	// 相邻峰间隔应集中在 0.8 秒
	var intervals []float64
	for i := 1; i < len(peaks); i++ {
		intervals = append(intervals, float64(peaks[i]-peaks[i-1])/fs)
	}
	assert.InDelta(t, 0.8, Median(intervals), 0.03)
}

func TestQRSDetector_PeaksAlignedWithBeats(t *testing.T) {
	fs := 130.0
	duration := 20.0
	beats := regularBeats(0.75, 0.5, duration) // 80 bpm

	ecg := syntheticECG(beats, fs, duration, 4000, 0, 2)

	d := NewQRSDetector(0.25, 0.6)
	peaks := d.Detect(ecg, fs)
	require.NotEmpty(t, peaks)

	// 每个检出峰都应落在某次心搏 ±50ms 内
	for _, p := range peaks {
		tp := float64(p) / fs
		best := math.Inf(1)
		for _, bt := range beats {
			if dd := math.Abs(tp - bt); dd < best {
				best = dd
			}
		}
		assert.Less(t, best, 0.05)
	}
}

func TestQRSDetector_TooShortWindow(t *testing.T) {
	d := NewQRSDetector(0.25, 0.6)
	assert.Nil(t, d.Detect(make([]float64, 100), 130.0))
}

func TestQRSDetector_FlatlineNoBeats(t *testing.T) {
	d := NewQRSDetector(0.25, 0.6)
	flat := make([]float64, int(130.0*15))
	assert.Empty(t, d.Detect(flat, 130.0))
}

func TestMovingWindowIntegrate_ConstantSignal(t *testing.T) {
	x := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	y := movingWindowIntegrate(x, 3)

	// 中部是完整窗平均，端点窗被零填充截短
	assert.InDelta(t, 1.0, y[3], 1e-12)
	assert.InDelta(t, 2.0/3.0, y[0], 1e-12)
	assert.InDelta(t, 2.0/3.0, y[len(y)-1], 1e-12)
}
