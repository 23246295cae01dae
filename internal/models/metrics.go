package models

// MetricsRecord 一次分析周期的完整输出（发布到 Telemetry/{team}/{ff}）
//
// 可空指标使用指针类型：前置条件不满足时为 nil，序列化为 JSON null。
// 字段名与边缘侧/前端约定的线上格式保持一致，不要改名。
type MetricsRecord struct {
	TeamID     string  `json:"teamId"`
	FFID       string  `json:"ffId"`
	ObservedAt string  `json:"observedAt"` // ISO-8601 UTC
	Source     string  `json:"source"`
	FsEstHz    float64 `json:"fs_est_hz"` // 采样率估计（Hz）
	SQI        float64 `json:"sqi"`       // 信号质量评分 0..1

	// 时域 HRV
	BPM      *float64 `json:"bpm"`
	RRMsMean float64  `json:"rr_ms_mean"`
	RRMsMed  float64  `json:"rr_ms_med"`
	SDNNMs   *float64 `json:"sdnn_ms"`
	RMSSDMs  *float64 `json:"rmssd_ms"`
	PNN50Pct *float64 `json:"pnn50_pct"`
	PNN20Pct *float64 `json:"pnn20_pct"`
	CVRR     *float64 `json:"cvrr"`
	SD1Ms    *float64 `json:"sd1_ms"`
	SD2Ms    *float64 `json:"sd2_ms"`
	NRR      int      `json:"n_rr"`

	// 频域 HRV
	LFPower *float64 `json:"lf_power"`
	HFPower *float64 `json:"hf_power"`
	LFHF    *float64 `json:"lf_hf"`

	// 非线性 / 应激
	SampEn      *float64 `json:"sampen"`
	StressIndex *float64 `json:"stress_index"`

	// 节律异常代理指标
	EctopyRatio float64 `json:"ectopy_ratio"`

	// 热负荷 / 生理应变
	TcEstC         float64  `json:"tc_est_c"`
	PSI            *float64 `json:"psi"`
	HeatAUCDegCSec float64  `json:"heat_auc_degC_sec"`
	HeatAUCSince   string   `json:"heat_auc_since"`

	// 基线快照
	BaselineHRBpm   float64 `json:"baseline_hr_bpm"`
	BaselineRMSSDMs float64 `json:"baseline_rmssd_ms"`
	BaselineTcC     float64 `json:"baseline_tc_c"`

	// 综合评分
	FatigueScore     *float64 `json:"fatigue_score_0_100"`
	CardiacRiskScore *float64 `json:"cardiac_risk_score_0_100"`
}
