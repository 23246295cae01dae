package dsp

import "math"

// SQI 配置常数（与边缘侧演示部署的标定一致，依赖采集端的计数刻度）
const (
	sqiFlatlineFrac = 0.25   // 平坦段占比上限
	sqiFlatlineSQI  = 0.1    // 平坦信号固定得分
	sqiP2PFloor     = 200.0  // 动态范围下限（计数）
	sqiP2PScale     = 8000.0 // 动态范围饱和点（计数）
	sqiBaseFloor    = 0.15   // 幅度得分下限
	sqiClipPenalty  = 2.5    // 削顶惩罚斜率
)

// SQI ECG 信号质量评分，返回 0..1
//
// 依次评估：平坦/重复样本、动态范围、削顶占比、频带功率合理性。
// 窗口不足 2 秒直接判 0。
func SQI(raw []float64, fs float64) float64 {
	if len(raw) < int(fs*2) {
		return 0.0
	}

	// 平坦/重复样本：相邻差分为零的占比
	var flat int
	for i := 1; i < len(raw); i++ {
		if raw[i] == raw[i-1] {
			flat++
		}
	}
	if float64(flat)/float64(len(raw)-1) > sqiFlatlineFrac {
		return sqiFlatlineSQI
	}

	// 动态范围（1/99 百分位峰峰值）
	p2p := Percentile(raw, 99) - Percentile(raw, 1)
	base := sqiBaseFloor
	if p2p >= sqiP2PFloor {
		base = Clamp(p2p/sqiP2PScale, sqiBaseFloor, 1.0)
	}

	// 削顶占比（0.1/99.9 百分位之外）
	hi := Percentile(raw, 99.9)
	lo := Percentile(raw, 0.1)
	var clipped int
	for _, v := range raw {
		if v >= hi || v <= lo {
			clipped++
		}
	}
	clipFrac := float64(clipped) / float64(len(raw))
	clipPen := Clamp(1.0-sqiClipPenalty*clipFrac, 0.0, 1.0)

	// 频带合理性：ECG 带内功率（0.5-40 Hz）相对全带功率（0.1-65 Hz）
	detrended := make([]float64, len(raw))
	mean := 0.0
	for _, v := range raw {
		mean += v
	}
	mean /= float64(len(raw))
	for i, v := range raw {
		detrended[i] = v - mean
	}

	nperseg := len(raw)
	if n := int(fs * 4); n < nperseg {
		nperseg = n
	}
	freqs, psd := Welch(detrended, fs, nperseg)

	bandRatio := 0.0
	if freqs != nil {
		upper := math.Min(65.0, fs/2-1e-6)
		total, _ := BandPower(freqs, psd, 0.1, upper, true)
		band, _ := BandPower(freqs, psd, 0.5, math.Min(40.0, fs/2-1e-6), true)
		bandRatio = Clamp(band/(total+1e-12), 0.0, 1.0)
	}

	sqi := base * clipPen * (0.4 + 0.6*bandRatio)
	return Clamp(sqi, 0.0, 1.0)
}
