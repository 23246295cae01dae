// Package dsp ECG 信号处理：滤波器组、功率谱估计、信号质量评分与 QRS 检测。
package dsp

import (
	"math"
	"sort"
)

// Clamp 区间裁剪
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Percentile 百分位数（线性插值，与 numpy.percentile 一致）
// p 取值 0..100，x 不要求有序。
func Percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	h := p / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Median 中位数
func Median(x []float64) float64 {
	return Percentile(x, 50)
}

// MAD 中位数绝对偏差 median(|x - median(x)|)
func MAD(x []float64) float64 {
	med := Median(x)
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - med)
	}
	return Median(dev)
}
