package dsp

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Welch 功率谱密度估计（Welch 法）
//
// Hann 窗、50% 重叠、逐段去均值、单边谱密度（单位 x²/Hz），
// 与 scipy.signal.welch 的默认行为对齐。
// nperseg 超过序列长度时压缩到序列长度；序列过短返回 nil。
func Welch(x []float64, fs float64, nperseg int) (freqs, psd []float64) {
	if nperseg > len(x) {
		nperseg = len(x)
	}
	if nperseg < 2 || fs <= 0 {
		return nil, nil
	}

	window := hann(nperseg)
	var wss float64 // 窗能量 sum(w²)
	for _, w := range window {
		wss += w * w
	}

	step := nperseg - nperseg/2
	nfreq := nperseg/2 + 1
	fft := fourier.NewFFT(nperseg)

	acc := make([]float64, nfreq)
	seg := make([]float64, nperseg)
	segments := 0

	for start := 0; start+nperseg <= len(x); start += step {
		copy(seg, x[start:start+nperseg])

		// 逐段去均值 + 加窗
		mean := stat.Mean(seg, nil)
		for i := range seg {
			seg[i] = (seg[i] - mean) * window[i]
		}

		coeffs := fft.Coefficients(nil, seg)
		for k, c := range coeffs {
			acc[k] += real(c)*real(c) + imag(c)*imag(c)
		}
		segments++
	}

	if segments == 0 {
		return nil, nil
	}

	scale := 1.0 / (fs * wss * float64(segments))
	freqs = make([]float64, nfreq)
	psd = make([]float64, nfreq)
	for k := 0; k < nfreq; k++ {
		freqs[k] = fs * float64(k) / float64(nperseg)
		psd[k] = acc[k] * scale
		// 单边谱：除直流与 Nyquist 外翻倍
		if k != 0 && !(nperseg%2 == 0 && k == nfreq-1) {
			psd[k] *= 2
		}
	}
	return freqs, psd
}

// BandPower 频带功率（梯形积分）
//
// inclusive 控制上边界是否闭区间。频带内没有频点时返回 ok=false；
// 只有一个频点时积分为 0（与 numpy.trapz 一致）。
func BandPower(freqs, psd []float64, lo, hi float64, inclusive bool) (float64, bool) {
	var fs, ps []float64
	for i, f := range freqs {
		inBand := f >= lo && f < hi
		if inclusive {
			inBand = f >= lo && f <= hi
		}
		if inBand {
			fs = append(fs, f)
			ps = append(ps, psd[i])
		}
	}
	if len(fs) == 0 {
		return 0, false
	}
	if len(fs) == 1 {
		return 0, true
	}
	return integrate.Trapezoidal(fs, ps), true
}

// hann 周期 Hann 窗
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}
