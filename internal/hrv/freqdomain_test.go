package hrv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modulatedRR 以指定频率正弦调制的 RR 序列（秒）
func modulatedRR(n int, base, depth, modHz float64) []float64 {
	rr := make([]float64, n)
	t := 0.0
	for i := range rr {
		rr[i] = base + depth*math.Sin(2*math.Pi*modHz*t)
		t += rr[i]
	}
	return rr
}

func TestComputeFreqDomain_LFModulationDominates(t *testing.T) {
	// 0.1 Hz 调制落在 LF 频带 [0.04, 0.15)
	rr := modulatedRR(150, 0.8, 0.05, 0.1)

	fd := ComputeFreqDomain(rr)
	require.NotNil(t, fd.LFPower)
	require.NotNil(t, fd.HFPower)
	require.NotNil(t, fd.LFHF)

	assert.Greater(t, *fd.LFHF, 2.0)
}

func TestComputeFreqDomain_HFModulationDominates(t *testing.T) {
	// 0.3 Hz（呼吸性）调制落在 HF 频带 [0.15, 0.40)
	rr := modulatedRR(150, 0.8, 0.05, 0.3)

	fd := ComputeFreqDomain(rr)
	require.NotNil(t, fd.LFHF)
	assert.Less(t, *fd.LFHF, 1.0)
}

func TestComputeFreqDomain_TooShort(t *testing.T) {
	// 累计时长不足 10 秒
	rr := []float64{0.8, 0.8, 0.8, 0.8}

	fd := ComputeFreqDomain(rr)
	assert.Nil(t, fd.LFPower)
	assert.Nil(t, fd.HFPower)
	assert.Nil(t, fd.LFHF)
}

func TestComputeFreqDomain_Empty(t *testing.T) {
	fd := ComputeFreqDomain(nil)
	assert.Nil(t, fd.LFHF)
}

func TestInterpolateTachogram_GridLengthAndMean(t *testing.T) {
	rr := modulatedRR(60, 0.8, 0.02, 0.1)

	tacho := interpolateTachogram(rr, 4.0)
	require.NotNil(t, tacho)

	// 4 Hz 均匀网格，覆盖累计时长
	var duration float64
	for _, v := range rr[1:] {
		duration += v
	}
	assert.InDelta(t, duration*4.0, float64(len(tacho)), 1.5)

	// 去均值后样本均值为 0
	var mean float64
	for _, v := range tacho {
		mean += v
	}
	mean /= float64(len(tacho))
	assert.InDelta(t, 0.0, mean, 1e-9)
}

func TestInterp_ClampsOutsideRange(t *testing.T) {
	tt := []float64{0, 1, 2}
	vv := []float64{10, 20, 30}

	assert.Equal(t, 10.0, interp(-1, tt, vv, 0))
	assert.Equal(t, 30.0, interp(5, tt, vv, 2))
	assert.InDelta(t, 15.0, interp(0.5, tt, vv, 0), 1e-12)
}
