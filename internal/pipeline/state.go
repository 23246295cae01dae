package pipeline

import (
	"sync"

	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/strain"
)

// Phase 流状态机阶段
type Phase int

const (
	PhaseIdle         Phase = iota // 尚无缓冲
	PhaseAccumulating              // 缓冲不足最小可分析时长
	PhaseReady                     // 每个后续包都触发一次完整分析
)

// 采样率再估计的合法性门禁：单个损坏的时间戳不能扰动下游滤波器设计，
// 先卡时间间隔，再卡瞬时速率，两关都过才混入
const (
	rateMinDeltaNs  = 1_000_000 // 最小时间戳增量（1ms）
	rateMinInterval = 0.001     // 最小包间隔（秒）
	rateMaxInterval = 2.0       // 最大包间隔（秒）
	rateMinHz       = 50.0      // 瞬时速率下限
	rateMaxHz       = 300.0     // 瞬时速率上限
	rateBlendOld    = 0.9       // 平滑权重（旧值）
	rateBlendNew    = 0.1       // 平滑权重（新值）
)

// streamKey 流标识 (team, ff)
type streamKey struct {
	team string
	ff   string
}

// StreamState 每个 (team, ff) 流的全部可变状态
//
// 同一流内的处理必须严格串行：Process 持有 mu 直到本包处理完成。
type StreamState struct {
	mu sync.Mutex

	Phase Phase
	FsEst float64 // 平滑的采样率估计（Hz）

	buf       *ringBuffer
	lastTS    uint64 // 上一帧设备时间戳（纳秒）
	hasLastTS bool
	lastN     int // 上一帧样本数

	Baselines strain.Baselines
	Heat      strain.HeatAccumulator
}

// updateRate 由相邻帧时间戳增量做增量式采样率再估计
func (s *StreamState) updateRate(ts uint64, sampleCount int) {
	if s.hasLastTS && ts > s.lastTS && s.lastN > 0 {
		dtNs := ts - s.lastTS
		if dtNs > rateMinDeltaNs {
			dtSec := float64(dtNs) / 1e9
			if dtSec > rateMinInterval && dtSec < rateMaxInterval {
				inst := float64(s.lastN) / dtSec
				if inst > rateMinHz && inst < rateMaxHz {
					s.FsEst = rateBlendOld*s.FsEst + rateBlendNew*inst
				}
				// 范围外的瞬时估计直接丢弃，不混入
			}
		}
	}
	s.lastTS = ts
	s.hasLastTS = true
	s.lastN = sampleCount
}

// StateStore 流状态仓库（get-or-create 语义）
//
// 各流状态彼此独立，键在进程生命周期内不回收。
type StateStore struct {
	mu     sync.Mutex
	states map[streamKey]*StreamState
	config *config.Config
}

// NewStateStore 创建状态仓库
func NewStateStore(cfg *config.Config) *StateStore {
	return &StateStore{
		states: make(map[streamKey]*StreamState),
		config: cfg,
	}
}

// GetOrCreate 获取或按默认配置创建流状态
func (st *StateStore) GetOrCreate(team, ff string) *StreamState {
	st.mu.Lock()
	defer st.mu.Unlock()

	key := streamKey{team: team, ff: ff}
	if s, ok := st.states[key]; ok {
		return s
	}

	cfg := st.config
	capacity := int(cfg.Signal.WindowSec*cfg.Signal.DefaultFs) * cfg.Signal.BufferWindowMult
	s := &StreamState{
		Phase:     PhaseIdle,
		FsEst:     cfg.Signal.DefaultFs,
		buf:       newRingBuffer(capacity),
		Baselines: strain.NewBaselines(cfg),
	}
	st.states[key] = s
	return s
}

// Len 当前流数量
func (st *StateStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.states)
}

// ringBuffer 有界环形缓冲：满时覆盖最旧样本
type ringBuffer struct {
	data  []int32
	start int
	size  int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{data: make([]int32, capacity)}
}

// Append 追加样本，容量不足时逐出最旧的
func (r *ringBuffer) Append(samples []int32) {
	for _, v := range samples {
		if r.size < len(r.data) {
			r.data[(r.start+r.size)%len(r.data)] = v
			r.size++
		} else {
			r.data[r.start] = v
			r.start = (r.start + 1) % len(r.data)
		}
	}
}

// Len 当前缓冲样本数
func (r *ringBuffer) Len() int {
	return r.size
}

// Tail 返回最近 n 个样本（float64 拷贝），n 超过缓冲长度时返回全部
func (r *ringBuffer) Tail(n int) []float64 {
	if n > r.size {
		n = r.size
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := (r.start + r.size - n + i) % len(r.data)
		out[i] = float64(r.data[idx])
	}
	return out
}
