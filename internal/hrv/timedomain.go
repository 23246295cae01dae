package hrv

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"wisefido-biomed/internal/dsp"
)

// TimeDomain 时域 HRV 指标
//
// 每项指标的样本量前置条件独立判断，不满足即为 nil——
// 绝不用不足的数据编造数字。
type TimeDomain struct {
	BPM      *float64 // 60 / median(RR)
	RRMsMean float64
	RRMsMed  float64
	SDNNMs   *float64 // RR 样本标准差（ms），需要 ≥2 个间期
	RMSSDMs  *float64 // 相邻差分均方根（ms），需要 ≥2 个差分
	PNN50Pct *float64 // 相邻差分 >50ms 占比（%）
	PNN20Pct *float64 // 相邻差分 >20ms 占比（%）
	CVRR     *float64 // RR 变异系数（无量纲）
	SD1Ms    *float64 // Poincaré 短轴，需要 ≥3 个间期
	SD2Ms    *float64 // Poincaré 长轴
	NRR      int
}

// ComputeTimeDomain 由清洗后的 RR 序列（秒）计算时域指标
func ComputeTimeDomain(rr []float64) TimeDomain {
	rrMs := make([]float64, len(rr))
	for i, v := range rr {
		rrMs[i] = v * 1000.0
	}

	diffMs := make([]float64, 0, len(rrMs)-1)
	for i := 1; i < len(rrMs); i++ {
		diffMs = append(diffMs, rrMs[i]-rrMs[i-1])
	}

	td := TimeDomain{
		RRMsMean: stat.Mean(rrMs, nil),
		RRMsMed:  dsp.Median(rrMs),
		NRR:      len(rr),
	}

	if med := dsp.Median(rr); med > 0 {
		td.BPM = fptr(60.0 / med)
	}

	if len(rrMs) >= 2 {
		td.SDNNMs = fptr(stat.StdDev(rrMs, nil))

		meanRR := stat.Mean(rr, nil)
		td.CVRR = fptr(stat.StdDev(rr, nil) / (meanRR + 1e-9))
	}

	if len(diffMs) >= 2 {
		var sumSq float64
		var over50, over20 int
		for _, d := range diffMs {
			sumSq += d * d
			if d > 50.0 || d < -50.0 {
				over50++
			}
			if d > 20.0 || d < -20.0 {
				over20++
			}
		}
		n := float64(len(diffMs))
		td.RMSSDMs = fptr(math.Sqrt(sumSq / n))
		td.PNN50Pct = fptr(float64(over50) / n * 100.0)
		td.PNN20Pct = fptr(float64(over20) / n * 100.0)
	}

	// Poincaré SD1/SD2：差分/和序列各缩放 1/√2 的标准旋转椭圆形式
	if len(rrMs) >= 3 {
		diffScaled := make([]float64, len(rrMs)-1)
		sumScaled := make([]float64, len(rrMs)-1)
		for i := 1; i < len(rrMs); i++ {
			diffScaled[i-1] = (rrMs[i] - rrMs[i-1]) / math.Sqrt2
			sumScaled[i-1] = (rrMs[i] + rrMs[i-1]) / math.Sqrt2
		}
		td.SD1Ms = fptr(stat.StdDev(diffScaled, nil))
		td.SD2Ms = fptr(stat.StdDev(sumScaled, nil))
	}

	return td
}
