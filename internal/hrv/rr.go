// Package hrv RR 序列提取/清洗与时域、频域、非线性 HRV 指标计算。
package hrv

import (
	"math"

	"wisefido-biomed/internal/dsp"
)

const (
	// 生理可能范围之外的 RR 视为传感器伪迹（240–24 bpm）
	rrMinSec = 0.25
	rrMaxSec = 2.5

	// 清洗用 4×MAD（保守），节律异常代理用 3×MAD（敏感）——
	// 两个阈值刻意不同，不要统一
	cleanMADFactor  = 4.0
	ectopyMADFactor = 3.0

	minIntervals = 3
)

// FromPeaks 由心搏下标计算 RR 序列（秒）
//
// 剔除生理不可能的间期；存活间期不足 3 个返回 nil（数据不足）。
func FromPeaks(peaks []int, fs float64) []float64 {
	if len(peaks) < minIntervals {
		return nil
	}

	rr := make([]float64, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		v := float64(peaks[i]-peaks[i-1]) / fs
		if v > rrMinSec && v < rrMaxSec {
			rr = append(rr, v)
		}
	}

	if len(rr) < minIntervals {
		return nil
	}
	return rr
}

// Clean 轻量离群清洗：剔除偏离中位数超过 4×MAD 的间期
//
// 清洗后不足 3 个时跳过清洗、原样返回——清洗永远不把可用数据清空。
func Clean(rr []float64) []float64 {
	med := dsp.Median(rr)
	dev := dsp.MAD(rr) + 1e-9
	lo := med - cleanMADFactor*dev
	hi := med + cleanMADFactor*dev

	cleaned := make([]float64, 0, len(rr))
	for _, v := range rr {
		if v >= lo && v <= hi {
			cleaned = append(cleaned, v)
		}
	}

	if len(cleaned) < minIntervals {
		return rr
	}
	return cleaned
}

// EctopyRatio 节律异常代理：偏离中位数超过 3×MAD 的间期占比
//
// 与清洗判据独立计算，作为敏感的不规则度指示，不用于剔除数据。
func EctopyRatio(rr []float64) float64 {
	if len(rr) == 0 {
		return 0
	}
	med := dsp.Median(rr)
	dev := dsp.MAD(rr) + 1e-9

	var outliers int
	for _, v := range rr {
		if v < med-ectopyMADFactor*dev || v > med+ectopyMADFactor*dev {
			outliers++
		}
	}
	return float64(outliers) / float64(len(rr))
}

func fptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
