package dsp

import (
	"math"
	"sync"
)

// biquad 二阶 IIR 节（系数已按 a0 归一化）
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// filter 直接 II 型转置结构单向滤波
//
// 初始状态按首样本的阶跃稳态设置（scipy lfilter_zi 的等价物）：
// 常值输入不产生启动瞬态，平线窗口滤波后不会出现虚假振铃。
func (q biquad) filter(x []float64) []float64 {
	y := make([]float64, len(x))
	if len(x) == 0 {
		return y
	}

	c := x[0]
	dc := (q.b0 + q.b1 + q.b2) / (1 + q.a1 + q.a2)
	yss := dc * c
	z1 := yss - q.b0*c
	z2 := q.b2*c - q.a2*yss

	for i, v := range x {
		out := q.b0*v + z1
		z1 = q.b1*v - q.a1*out + z2
		z2 = q.b2*v - q.a2*out
		y[i] = out
	}
	return y
}

// filtfilt 前向-后向零相位滤波（奇对称端点延拓，抑制边缘瞬态）
func filtfilt(q biquad, x []float64) []float64 {
	n := len(x)
	if n < 2 {
		out := make([]float64, n)
		copy(out, x)
		return out
	}

	pad := 9 // 3 × 滤波器阶数+1
	if pad >= n {
		pad = n - 1
	}

	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}

	y := q.filter(ext)
	reverse(y)
	y = q.filter(y)
	reverse(y)

	out := make([]float64, n)
	copy(out, y[pad:pad+n])
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// 4阶 Butterworth 级联的节 Q 值：1/(2cos(π/8)), 1/(2cos(3π/8))
var butterworth4Q = [2]float64{0.5411961001461969, 1.3065629648763766}

// lowpassBiquad RBJ 低通节
func lowpassBiquad(fc, fs, q float64) biquad {
	w0 := 2 * math.Pi * fc / fs
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: (1 - cw) / 2 / a0,
		b1: (1 - cw) / a0,
		b2: (1 - cw) / 2 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}
}

// highpassBiquad RBJ 高通节
func highpassBiquad(fc, fs, q float64) biquad {
	w0 := 2 * math.Pi * fc / fs
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: (1 + cw) / 2 / a0,
		b1: -(1 + cw) / a0,
		b2: (1 + cw) / 2 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}
}

// notchBiquad IIR 陷波节（与 scipy.signal.iirnotch 等价）
func notchBiquad(f0, fs, q float64) biquad {
	w0 := 2 * math.Pi * f0 / fs
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: 1 / a0,
		b1: -2 * cw / a0,
		b2: 1 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}
}

// filterSet 一个采样率下的完整滤波器组：陷波 + 4阶 Butterworth 带通
// （带通由高通、低通各两节级联实现）
type filterSet struct {
	notch    *biquad
	highpass []biquad
	lowpass  []biquad
}

func designFilterSet(fs, lowHz, highHz, notchHz, notchQ float64) *filterSet {
	set := &filterSet{}
	nyq := fs / 2

	// 截止频率必须低于 Nyquist，采样率过低时压到 0.45·fs
	hi := highHz
	if hi >= nyq {
		hi = 0.45 * fs
	}

	for _, q := range butterworth4Q {
		set.highpass = append(set.highpass, highpassBiquad(lowHz, fs, q))
		set.lowpass = append(set.lowpass, lowpassBiquad(hi, fs, q))
	}

	if notchHz < nyq {
		n := notchBiquad(notchHz, fs, notchQ)
		set.notch = &n
	}
	return set
}

// apply 零相位应用全部滤波节（顺序：陷波 → 带通）
func (s *filterSet) apply(x []float64) []float64 {
	y := x
	if s.notch != nil {
		y = filtfilt(*s.notch, y)
	}
	for _, q := range s.highpass {
		y = filtfilt(q, y)
	}
	for _, q := range s.lowpass {
		y = filtfilt(q, y)
	}
	return y
}

// FilterBank 按采样率缓存滤波器组的工厂
//
// 滤波器设计是采样率的纯函数，并发下的重复设计是幂等的，
// 直接丢弃后来者即可。
type FilterBank struct {
	lowHz   float64
	highHz  float64
	notchHz float64
	notchQ  float64

	mu    sync.RWMutex
	cache map[float64]*filterSet
}

// NewFilterBank 创建滤波器组工厂
func NewFilterBank(lowHz, highHz, notchHz, notchQ float64) *FilterBank {
	return &FilterBank{
		lowHz:   lowHz,
		highHz:  highHz,
		notchHz: notchHz,
		notchQ:  notchQ,
		cache:   make(map[float64]*filterSet),
	}
}

// Apply 对窗口做零相位滤波
//
// 窗口不足 2 秒时滤波器设计无意义，原样返回（拷贝）。
func (fb *FilterBank) Apply(x []float64, fs float64) []float64 {
	if len(x) < int(fs*2) {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}

	key := math.Round(fs*100) / 100

	fb.mu.RLock()
	set, ok := fb.cache[key]
	fb.mu.RUnlock()

	if !ok {
		set = designFilterSet(fs, fb.lowHz, fb.highHz, fb.notchHz, fb.notchQ)
		fb.mu.Lock()
		if existing, dup := fb.cache[key]; dup {
			set = existing
		} else {
			fb.cache[key] = set
		}
		fb.mu.Unlock()
	}

	return set.apply(x)
}
