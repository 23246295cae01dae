// Package pipeline 每个 (team, ff) 流的 ECG 分析编排：
// 解码 → 采样率再估计 → 缓冲 → 质量评分 → 滤波 → QRS 检测 →
// RR 提取/清洗 → HRV/应激/热负荷指标 → 综合评分 → 报警。
package pipeline

import (
	"math"
	"time"

	"go.uber.org/zap"

	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/decoder"
	"wisefido-biomed/internal/dsp"
	"wisefido-biomed/internal/hrv"
	"wisefido-biomed/internal/models"
	"wisefido-biomed/internal/risk"
	"wisefido-biomed/internal/strain"
)

const recordSource = "wisefido-biomed"

// SampEn 参数：模板长度 2，容差 0.2×标准差
const (
	sampEnM = 2
	sampEnR = 0.2
)

// Pipeline 流式分析管线
type Pipeline struct {
	config    *config.Config
	store     *StateStore
	filters   *dsp.FilterBank
	detector  *dsp.QRSDetector
	evaluator *risk.Evaluator
	logger    *zap.Logger

	now func() time.Time // 可注入时钟（测试用）
}

// NewPipeline 创建分析管线
func NewPipeline(cfg *config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		config:    cfg,
		store:     NewStateStore(cfg),
		filters:   dsp.NewFilterBank(cfg.Signal.BandpassLowHz, cfg.Signal.BandpassHighHz, cfg.Signal.NotchHz, cfg.Signal.NotchQ),
		detector:  dsp.NewQRSDetector(cfg.Detector.RefractorySec, cfg.Detector.PeakPromFrac),
		evaluator: risk.NewEvaluator(cfg, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Store 状态仓库（供监控/测试）
func (p *Pipeline) Store() *StateStore {
	return p.store
}

// Process 处理一条入站 ECG1 捆包消息
//
// 缓冲不足、信号不可用或心搏不足时返回 (nil, nil)：
// 周期中止，不发布部分记录。单项指标的前置条件不满足只置空该字段。
func (p *Pipeline) Process(team, ff string, payload []byte) (*models.MetricsRecord, []models.Alert) {
	frames := decoder.ParseBundle(payload)
	if len(frames) == 0 {
		return nil, nil
	}

	state := p.store.GetOrCreate(team, ff)
	state.mu.Lock()
	defer state.mu.Unlock()

	// 摄入：逐帧再估计采样率并入缓冲
	ingested := false
	for _, frame := range frames {
		ts, samples, ok := decoder.ParseFrame(frame)
		if !ok || len(samples) == 0 {
			continue
		}
		state.updateRate(ts, len(samples))
		state.buf.Append(samples)
		ingested = true
	}
	if !ingested {
		return nil, nil
	}
	if state.Phase == PhaseIdle {
		state.Phase = PhaseAccumulating
	}

	fs := state.FsEst
	need := int(p.config.Signal.MinSecForAnalysis * fs)
	if state.buf.Len() < need {
		return nil, nil
	}
	if state.Phase != PhaseReady {
		state.Phase = PhaseReady
		p.logger.Info("Stream ready for analysis",
			zap.String("team_id", team),
			zap.String("ff_id", ff),
			zap.Float64("fs_est_hz", fs),
		)
	}

	// 取尾部窗口，每个周期重新计算（无增量窗口）
	n := int(p.config.Signal.WindowSec * fs)
	raw := state.buf.Tail(n)

	// 质量 → 滤波 → QRS → RR
	sqi := dsp.SQI(raw, fs)
	filtered := p.filters.Apply(raw, fs)
	peaks := p.detector.Detect(filtered, fs)

	rr := hrv.FromPeaks(peaks, fs)
	if rr == nil {
		p.logger.Debug("Analysis cycle aborted: insufficient usable beats",
			zap.String("team_id", team),
			zap.String("ff_id", ff),
			zap.Int("peaks", len(peaks)),
			zap.Float64("sqi", sqi),
		)
		return nil, nil
	}
	rr = hrv.Clean(rr)

	// HRV 指标
	td := hrv.ComputeTimeDomain(rr)
	fd := hrv.ComputeFreqDomain(rr)
	sampEn := hrv.SampleEntropy(rr, sampEnM, sampEnR)
	stressIndex := hrv.BaevskyStressIndex(rr)
	ectopy := hrv.EctopyRatio(rr)

	if td.BPM == nil {
		return nil, nil
	}
	bpm := *td.BPM

	// 热负荷 / 应变
	tcEst := strain.CoreTempEstimate(td.BPM, state.Baselines.HRBpm, nil, p.config)
	psi := strain.PhysiologicalStrainIndex(td.BPM, tcEst)

	// 基线更新（质量门禁，避免基线漂向噪声）
	if sqi >= p.config.Baseline.MinSQI {
		state.Baselines.Update(bpm, td.RMSSDMs, tcEst, p.config)
	}

	state.Heat.Update(tcEst, p.now(), p.config.Heat.MaxGapSec)

	rec := &models.MetricsRecord{
		TeamID:     team,
		FFID:       ff,
		ObservedAt: p.now().UTC().Format("2006-01-02T15:04:05Z"),
		Source:     recordSource,
		FsEstHz:    round2(fs),
		SQI:        sqi,

		BPM:      td.BPM,
		RRMsMean: td.RRMsMean,
		RRMsMed:  td.RRMsMed,
		SDNNMs:   td.SDNNMs,
		RMSSDMs:  td.RMSSDMs,
		PNN50Pct: td.PNN50Pct,
		PNN20Pct: td.PNN20Pct,
		CVRR:     td.CVRR,
		SD1Ms:    td.SD1Ms,
		SD2Ms:    td.SD2Ms,
		NRR:      td.NRR,

		LFPower: fd.LFPower,
		HFPower: fd.HFPower,
		LFHF:    fd.LFHF,

		SampEn:      sampEn,
		StressIndex: stressIndex,
		EctopyRatio: ectopy,

		TcEstC:         tcEst,
		PSI:            psi,
		HeatAUCDegCSec: state.Heat.Area(),
		HeatAUCSince:   state.Heat.StartISO,

		BaselineHRBpm:   round1(state.Baselines.HRBpm),
		BaselineRMSSDMs: round1(state.Baselines.RMSSDMs),
		BaselineTcC:     round2(state.Baselines.TcC),
	}

	// 综合评分
	inputs := risk.ScoreInputs{
		SQI:         sqi,
		BPM:         td.BPM,
		RMSSDMs:     td.RMSSDMs,
		LFHF:        fd.LFHF,
		StressIndex: stressIndex,
		SampEn:      sampEn,
		CVRR:        td.CVRR,
		EctopyRatio: ectopy,
	}
	rec.FatigueScore = risk.FatigueScore(inputs)
	rec.CardiacRiskScore = risk.CardiacRiskScore(inputs, p.config)

	alerts := p.evaluator.Evaluate(rec)
	return rec, alerts
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
