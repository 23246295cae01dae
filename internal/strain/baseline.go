package strain

import "wisefido-biomed/internal/config"

// Baselines 慢速 EWMA 基线（静息心率、RMSSD、核心体温）
//
// 只在窗口信号质量达标时更新，避免基线被噪声拖偏。
// 体温基线的权重更小：温度不应追随瞬时尖峰。
type Baselines struct {
	HRBpm   float64
	RMSSDMs float64
	TcC     float64
}

// NewBaselines 以配置的初值种子化基线
func NewBaselines(cfg *config.Config) Baselines {
	return Baselines{
		HRBpm:   cfg.Baseline.InitHRBpm,
		RMSSDMs: cfg.Baseline.InitRMSSDMs,
		TcC:     cfg.Baseline.InitTcC,
	}
}

// Update 按配置权重混入本周期的观测值
//
// rmssd 本周期为 nil 时跳过 RMSSD 基线。
func (b *Baselines) Update(bpm float64, rmssd *float64, tc float64, cfg *config.Config) {
	b.HRBpm = (1-cfg.Baseline.HRWeight)*b.HRBpm + cfg.Baseline.HRWeight*bpm
	if rmssd != nil {
		b.RMSSDMs = (1-cfg.Baseline.RMSSDWeight)*b.RMSSDMs + cfg.Baseline.RMSSDWeight**rmssd
	}
	b.TcC = (1-cfg.Baseline.TcWeight)*b.TcC + cfg.Baseline.TcWeight*tc
}
