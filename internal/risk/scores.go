// Package risk 综合风险评分与报警规则评估。
package risk

import (
	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/dsp"
)

// 疲劳评分各分量的阈值/饱和点与权重（0..100 加权和）
const (
	fatigueHRBase    = 100.0 // bpm 超过此值开始计分
	fatigueHRSpan    = 80.0
	fatigueHRWeight  = 30.0
	fatigueRMSSDBase = 25.0 // RMSSD 低于此值开始计分
	fatigueRMSSDSpan = 25.0
	fatigueRMSSDWt   = 30.0
	fatigueLFHFBase  = 1.5
	fatigueLFHFSpan  = 2.5
	fatigueLFHFWt    = 15.0
	fatigueSIBase    = 150.0
	fatigueSISpan    = 250.0
	fatigueSIWt      = 15.0
	fatigueEntBase   = 1.2 // 样本熵低于此值开始计分
	fatigueEntWt     = 10.0
)

// 心脏风险评分的固定加分与线性斜坡
const (
	cardiacHRVeryHigh   = 175.0
	cardiacHRHigh       = 160.0
	cardiacHRVeryLow    = 42.0
	cardiacHRLow        = 50.0
	cardiacVeryHighPts  = 35.0
	cardiacHighPts      = 20.0
	cardiacVeryLowPts   = 35.0
	cardiacLowPts       = 15.0
	cardiacCVRRBase     = 0.10
	cardiacCVRRSpan     = 0.15
	cardiacCVRRWeight   = 30.0
	cardiacEctopySat    = 0.10
	cardiacEctopyWeight = 35.0
)

// ScoreInputs 评分所需的指标切面
//
// 可空输入用指针表达；缺失的分量贡献 0 分而不是让整个评分塌掉。
type ScoreInputs struct {
	SQI         float64
	BPM         *float64
	RMSSDMs     *float64
	LFHF        *float64
	StressIndex *float64
	SampEn      *float64
	CVRR        *float64
	EctopyRatio float64
}

// FatigueScore 疲劳综合评分（0..100）
//
// 五个独立裁剪的分量加权求和：相对心率抬升、RMSSD 压低、
// LF/HF 抬升、应激指数抬升、样本熵压低。
// 缺失的分量记 0 分，评分优雅退化；只有 bpm 本身缺失才返回 nil。
func FatigueScore(in ScoreInputs) *float64 {
	if in.BPM == nil {
		return nil
	}

	s := dsp.Clamp((*in.BPM-fatigueHRBase)/fatigueHRSpan, 0, 1) * fatigueHRWeight

	if in.RMSSDMs != nil {
		s += dsp.Clamp((fatigueRMSSDBase-*in.RMSSDMs)/fatigueRMSSDSpan, 0, 1) * fatigueRMSSDWt
	}
	if in.LFHF != nil {
		s += dsp.Clamp((*in.LFHF-fatigueLFHFBase)/fatigueLFHFSpan, 0, 1) * fatigueLFHFWt
	}
	if in.StressIndex != nil {
		s += dsp.Clamp((*in.StressIndex-fatigueSIBase)/fatigueSISpan, 0, 1) * fatigueSIWt
	}
	if in.SampEn != nil {
		// 低熵可能反映受限的变异性
		s += dsp.Clamp((fatigueEntBase-*in.SampEn)/fatigueEntBase, 0, 1) * fatigueEntWt
	}

	s = dsp.Clamp(s, 0, 100)
	return &s
}

// CardiacRiskScore 心脏风险评分（0..100，运营关注分，非诊断）
//
// 信号质量低于下限时拒绝评分（返回 nil）——
// 不可信的信号上绝不给出心脏风险数字，无论其它输入多极端。
func CardiacRiskScore(in ScoreInputs, cfg *config.Config) *float64 {
	if in.SQI < cfg.Alert.LowSQI {
		return nil
	}
	if in.BPM == nil {
		return nil
	}

	var s float64
	bpm := *in.BPM

	// 心率极端值
	if bpm > cardiacHRVeryHigh {
		s += cardiacVeryHighPts
	} else if bpm > cardiacHRHigh {
		s += cardiacHighPts
	}
	if bpm < cardiacHRVeryLow {
		s += cardiacVeryLowPts
	} else if bpm < cardiacHRLow {
		s += cardiacLowPts
	}

	// 节律不齐（CVRR）
	if in.CVRR != nil {
		s += dsp.Clamp((*in.CVRR-cardiacCVRRBase)/cardiacCVRRSpan, 0, 1) * cardiacCVRRWeight
	}

	// 异位搏动代理
	s += dsp.Clamp(in.EctopyRatio/cardiacEctopySat, 0, 1) * cardiacEctopyWeight

	s = dsp.Clamp(s, 0, 100)
	return &s
}
