package dsp

// QRSDetector Pan-Tompkins 风格的 QRS 检测器
//
// 流程：一阶差分 → 平方（能量）→ 150ms 移动窗积分 →
// 中位数+MAD 自适应显著度阈值 → 带不应期约束的峰值搜索 →
// 回到滤波信号上做 ±80ms 局部极大修正（积分引入的位置滞后必须补偿）。
type QRSDetector struct {
	refractorySec float64 // 不应期（秒）
	promFrac      float64 // 显著度系数
}

const (
	mwiWindowSec    = 0.150 // 移动窗积分宽度
	refineSearchSec = 0.080 // 峰位修正搜索半径
)

// NewQRSDetector 创建 QRS 检测器
func NewQRSDetector(refractorySec, promFrac float64) *QRSDetector {
	return &QRSDetector{
		refractorySec: refractorySec,
		promFrac:      promFrac,
	}
}

// Detect 返回滤波后 ECG 窗口中各心搏的样本下标
//
// 窗口不足 2 秒返回空。
func (d *QRSDetector) Detect(ecg []float64, fs float64) []int {
	if len(ecg) < int(fs*2) {
		return nil
	}

	// 差分能量
	energy := make([]float64, len(ecg))
	for i := 1; i < len(ecg); i++ {
		diff := ecg[i] - ecg[i-1]
		energy[i] = diff * diff
	}

	mwi := movingWindowIntegrate(energy, mwiWindow(fs))

	// 自适应阈值：median + 比例化 MAD
	mad := MAD(mwi) + 1e-12
	prom := d.promFrac * (mad * 10.0)

	dist := int(d.refractorySec * fs)
	peaks := FindPeaks(mwi, dist, prom)
	if len(peaks) == 0 {
		return nil
	}

	// 峰位修正：积分峰附近搜索滤波信号的真实极大
	search := int(refineSearchSec * fs)
	refined := make([]int, 0, len(peaks))
	for _, p := range peaks {
		a := p - search
		if a < 0 {
			a = 0
		}
		b := p + search + 1
		if b > len(ecg) {
			b = len(ecg)
		}
		best := a
		for i := a + 1; i < b; i++ {
			if ecg[i] > ecg[best] {
				best = i
			}
		}
		refined = append(refined, best)
	}
	return refined
}

func mwiWindow(fs float64) int {
	win := int(mwiWindowSec * fs)
	if win < 3 {
		win = 3
	}
	return win
}

// movingWindowIntegrate 居中移动平均（numpy convolve "same" 语义，越界补零）
func movingWindowIntegrate(x []float64, win int) []float64 {
	n := len(x)
	prefix := make([]float64, n+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}

	offset := (win - 1) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		hi := i + offset + 1
		lo := hi - win
		if lo < 0 {
			lo = 0
		}
		if hi > n {
			hi = n
		}
		out[i] = (prefix[hi] - prefix[lo]) / float64(win)
	}
	return out
}
