// Package strain 核心体温/生理应变估计与基线追踪。
//
// 核心体温与 PSI 是演示级启发式模型，不是经过验证的生理学模型；
// 系数属于运营标定，按配置原样保留，不要重新推导。
package strain

import (
	"time"

	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/dsp"
)

// PSI 公式锚点（经典两项式 Physiological Strain Index，0..10）
const (
	psiTcBase  = 37.0
	psiTcSpan  = 39.5 - 37.0
	psiHRBase  = 60.0
	psiHRSpan  = 180.0 - 60.0
	psiDefault = 37.0 // bpm 不可用时的核心体温默认值
)

// CoreTempEstimate 由心率抬升（和环境温度）估计核心体温（°C）
//
// 单调启发式映射：心率高于基线抬升估计值，环境温度增加轻度热负荷。
// bpm 不可用时返回 37.0。
func CoreTempEstimate(bpm *float64, baselineHR float64, ambientC *float64, cfg *config.Config) float64 {
	if bpm == nil {
		return psiDefault
	}

	amb := cfg.Heat.DefaultAmbientC
	if ambientC != nil {
		amb = *ambientC
	}

	dhr := *bpm - baselineHR
	if dhr < 0 {
		dhr = 0
	}
	dAmb := amb - cfg.Heat.DefaultAmbientC
	if dAmb < 0 {
		dAmb = 0
	}

	tc := cfg.Heat.BaseTcC + cfg.Heat.HRCoef*dhr + cfg.Heat.AmbientCoef*dAmb
	return dsp.Clamp(tc, cfg.Heat.TcMinC, cfg.Heat.TcMaxC)
}

// PhysiologicalStrainIndex 心率 + 核心体温估计的 PSI（0..10）
func PhysiologicalStrainIndex(bpm *float64, tc float64) *float64 {
	if bpm == nil {
		return nil
	}
	psi := 5.0*(tc-psiTcBase)/psiTcSpan + 5.0*(*bpm-psiHRBase)/psiHRSpan
	psi = dsp.Clamp(psi, 0.0, 10.0)
	return &psi
}

// HeatAccumulator 热负荷累积器
//
// 对（估计核心体温 − 会话起始参考值）随时间做梯形积分（°C·秒）。
// 更新间隔超过 MaxGapSec 视为会话中断：静默重新同步，不注入面积，
// 避免长时间离线后出现虚假的热负荷尖峰。
type HeatAccumulator struct {
	StartISO string  // 会话起始时间（ISO-8601）
	refTc    float64 // 起始参考体温
	lastTc   float64
	lastT    time.Time
	area     float64
	started  bool
}

// Update 推进热负荷积分
func (h *HeatAccumulator) Update(tc float64, now time.Time, maxGapSec float64) {
	if !h.started {
		h.started = true
		h.StartISO = now.UTC().Format("2006-01-02T15:04:05Z")
		h.refTc = tc
		h.lastTc = tc
		h.lastT = now
		h.area = 0
		return
	}

	dt := now.Sub(h.lastT).Seconds()
	if dt <= 0 || dt > maxGapSec {
		// 会话中断：重新同步，不累积
		h.lastT = now
		h.lastTc = tc
		return
	}

	y0 := h.lastTc - h.refTc
	y1 := tc - h.refTc
	h.area += 0.5 * (y0 + y1) * dt
	h.lastT = now
	h.lastTc = tc
}

// Area 当前累计热负荷（°C·秒）
func (h *HeatAccumulator) Area() float64 {
	return h.area
}
