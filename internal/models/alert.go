package models

import (
	"encoding/json"
	"time"
)

// 报警严重级别
const (
	SeverityInfo   = "info"
	SeverityWarn   = "warn"
	SeverityDanger = "danger"
)

// 报警类型
const (
	AlertSignalQuality    = "signal_quality"
	AlertTachycardia      = "tachy"
	AlertBradycardia      = "brady"
	AlertFatigueHRV       = "fatigue_hrv"
	AlertSympatheticLoad  = "sympathetic_load"
	AlertIrregularRhythm  = "irregular_rhythm"
	AlertHeatStrain       = "heat_strain"
	AlertFatigueComposite = "fatigue_composite"
	AlertCardiacConcern   = "cardiac_concern"
)

// Alert 单条报警
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // info / warn / danger
	Msg      string `json:"msg"`
}

// AlertEnvelope 报警消息信封（发布到 Telemetry/{team}/{ff}/alerts）
type AlertEnvelope struct {
	TeamID     string  `json:"teamId"`
	FFID       string  `json:"ffId"`
	ObservedAt string  `json:"observedAt"`
	Alerts     []Alert `json:"alerts"`
}

// AlarmEvent 报警事件（写入 PostgreSQL biomed_alarm_events 表）
type AlarmEvent struct {
	EventID     string          `json:"event_id"`
	TeamID      string          `json:"team_id"`
	FFID        string          `json:"ff_id"`
	EventType   string          `json:"event_type"`
	Severity    string          `json:"severity"`
	Message     string          `json:"message"`
	TriggerData json.RawMessage `json:"trigger_data"` // 触发时刻的指标快照（JSONB）
	TriggeredAt time.Time       `json:"triggered_at"`
}
