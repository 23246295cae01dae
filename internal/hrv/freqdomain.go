package hrv

import (
	"gonum.org/v1/gonum/stat"

	"wisefido-biomed/internal/dsp"
)

// 频域 HRV 常数
const (
	tachogramFsHz   = 4.0  // 心动图重采样率
	tachogramMinS   = 10.0 // 频域分析所需的最短累计 RR 时长
	welchMaxNperseg = 256

	lfLowHz  = 0.04
	lfHighHz = 0.15
	hfLowHz  = 0.15
	hfHighHz = 0.40
)

// FreqDomain 频域 HRV 指标
type FreqDomain struct {
	LFPower *float64
	HFPower *float64
	LFHF    *float64
}

// ComputeFreqDomain 由 RR 序列（秒）计算 LF/HF 频域指标
//
// 累计 RR 时长不足 10 秒时全部为 nil。
func ComputeFreqDomain(rr []float64) FreqDomain {
	tacho := interpolateTachogram(rr, tachogramFsHz)
	if tacho == nil {
		return FreqDomain{}
	}

	nperseg := len(tacho)
	if nperseg > welchMaxNperseg {
		nperseg = welchMaxNperseg
	}
	freqs, psd := dsp.Welch(tacho, tachogramFsHz, nperseg)
	if freqs == nil {
		return FreqDomain{}
	}

	fd := FreqDomain{}
	lf, lfOK := dsp.BandPower(freqs, psd, lfLowHz, lfHighHz, false)
	hf, hfOK := dsp.BandPower(freqs, psd, hfLowHz, hfHighHz, false)
	if lfOK {
		fd.LFPower = fptr(lf)
	}
	if hfOK {
		fd.HFPower = fptr(hf)
	}
	if lfOK && hfOK && hf > 1e-12 {
		fd.LFHF = fptr(lf / hf)
	}
	return fd
}

// interpolateTachogram 由 RR 累计时间构建心动图并线性插值到均匀网格，去均值
//
// 累计时长不足 tachogramMinS 返回 nil。
func interpolateTachogram(rr []float64, fsResample float64) []float64 {
	if len(rr) == 0 {
		return nil
	}

	// 累计时间，平移到 0 起点
	t := make([]float64, len(rr))
	var cum float64
	for i, v := range rr {
		cum += v
		t[i] = cum
	}
	offset := t[0]
	for i := range t {
		t[i] -= offset
	}

	duration := t[len(t)-1]
	if duration < tachogramMinS {
		return nil
	}

	n := int(duration * fsResample)
	out := make([]float64, 0, n)
	j := 0
	for i := 0; i < n; i++ {
		tt := float64(i) / fsResample
		for j < len(t)-1 && t[j+1] < tt {
			j++
		}
		out = append(out, interp(tt, t, rr, j))
	}

	mean := stat.Mean(out, nil)
	for i := range out {
		out[i] -= mean
	}
	return out
}

// interp 在节点 j..j+1 间线性插值（端点外侧取边界值，与 numpy.interp 一致）
func interp(tt float64, t, v []float64, j int) float64 {
	if tt <= t[0] {
		return v[0]
	}
	if j >= len(t)-1 || tt >= t[len(t)-1] {
		return v[len(v)-1]
	}
	span := t[j+1] - t[j]
	if span <= 0 {
		return v[j]
	}
	frac := (tt - t[j]) / span
	return v[j] + frac*(v[j+1]-v[j])
}
