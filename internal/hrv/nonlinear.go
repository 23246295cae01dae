package hrv

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Baevsky 应激指数常数
const (
	baevskyBinMs   = 50.0 // RR 直方图分箱宽度（ms）
	baevskyMinRR   = 10   // 所需最少 RR 样本数
	baevskyMinBins = 3    // 所需最少分箱边界数
)

// SampleEntropy RR 序列样本熵（SampEn）
//
// m 为模板长度，r 为容差（标准差的倍数）。
// 直接 O(N²) 成对匹配计数——每窗 RR 只有几十个样本，
// 忠实于教科书定义比渐近复杂度更重要。
// 样本不足 m+2 或任一匹配计数为零时返回 nil；零方差序列返回 0。
func SampleEntropy(x []float64, m int, r float64) *float64 {
	if len(x) < m+2 {
		return nil
	}

	sd := stat.StdDev(x, nil)
	if sd < 1e-9 {
		zero := 0.0
		return &zero
	}
	tol := r * sd

	a := phi(x, m+1, tol)
	b := phi(x, m, tol)
	if a <= 1e-12 || b <= 1e-12 {
		return nil
	}
	return fptr(-math.Log(a / b))
}

// phi 长度 mm 的模板在容差 tol 内的匹配比例（Chebyshev 距离）
func phi(x []float64, mm int, tol float64) float64 {
	n := len(x)
	var count, total int

	for i := 0; i < n-mm; i++ {
		for j := i + 1; j <= n-mm; j++ {
			match := true
			for k := 0; k < mm; k++ {
				if math.Abs(x[i+k]-x[j+k]) > tol {
					match = false
					break
				}
			}
			if match {
				count++
			}
		}
		total += n - mm - i
	}

	return float64(count) / (float64(total) + 1e-12)
}

// BaevskyStressIndex RR 直方图形态导出的 Baevsky 应激指数
//
// SI = AMo / (2 · Mo · MxDMn)
// AMo 为众数箱占比（%），Mo 为众数箱中心（秒），MxDMn 为 RR 极差（秒）。
// 样本不足 10 个或直方图不足 2 个箱时返回 nil。
func BaevskyStressIndex(rr []float64) *float64 {
	if len(rr) < baevskyMinRR {
		return nil
	}

	rrMs := make([]float64, len(rr))
	minMs, maxMs := rr[0]*1000, rr[0]*1000
	for i, v := range rr {
		ms := v * 1000.0
		rrMs[i] = ms
		if ms < minMs {
			minMs = ms
		}
		if ms > maxMs {
			maxMs = ms
		}
	}

	// 50ms 分箱边界：[min, max+50) 步长 50
	var edges []float64
	for v := minMs; v < maxMs+baevskyBinMs; v += baevskyBinMs {
		edges = append(edges, v)
	}
	if len(edges) < baevskyMinBins {
		return nil
	}

	// 直方图（最后一个箱右闭，与 numpy.histogram 一致）
	hist := make([]int, len(edges)-1)
	for _, ms := range rrMs {
		idx := int((ms - minMs) / baevskyBinMs)
		if idx >= len(hist) {
			idx = len(hist) - 1
		}
		hist[idx]++
	}

	total := 0
	iMode := 0
	for i, c := range hist {
		total += c
		if c > hist[iMode] {
			iMode = i
		}
	}
	if total == 0 {
		return nil
	}

	moMs := 0.5 * (edges[iMode] + edges[iMode+1])
	amo := float64(hist[iMode]) / float64(total) * 100.0
	mxdmnS := (maxMs-minMs)/1000.0 + 1e-9
	moS := moMs/1000.0 + 1e-9

	return fptr(amo / (2.0 * moS * mxdmnS))
}
