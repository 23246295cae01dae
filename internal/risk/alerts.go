package risk

import (
	"fmt"

	"go.uber.org/zap"

	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/models"
)

// Evaluator 报警规则评估器
//
// 每条规则独立评估，可以同时触发多条。
// 信号质量低于下限时只保留一条 info 级的质量报警，
// 其余规则全部被质量门禁挡掉。
type Evaluator struct {
	config *config.Config
	logger *zap.Logger
}

// NewEvaluator 创建报警评估器
func NewEvaluator(cfg *config.Config, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		config: cfg,
		logger: logger,
	}
}

// Evaluate 评估一个分析周期的指标，返回触发的报警列表
func (e *Evaluator) Evaluate(rec *models.MetricsRecord) []models.Alert {
	var alerts []models.Alert
	cfg := e.config

	if rec.SQI < cfg.Alert.LowSQI {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertSignalQuality,
			Severity: models.SeverityInfo,
			Msg:      fmt.Sprintf("Low ECG SQI (%.2f)", rec.SQI),
		})
		// 质量门禁：低质量窗口不评估其余规则
		return alerts
	}

	if rec.BPM != nil {
		if *rec.BPM > cfg.Alert.TachyBPM {
			alerts = append(alerts, models.Alert{
				Type:     models.AlertTachycardia,
				Severity: models.SeverityDanger,
				Msg:      fmt.Sprintf("High HR %.0f bpm", *rec.BPM),
			})
		}
		if *rec.BPM < cfg.Alert.BradyBPM {
			alerts = append(alerts, models.Alert{
				Type:     models.AlertBradycardia,
				Severity: models.SeverityDanger,
				Msg:      fmt.Sprintf("Low HR %.0f bpm", *rec.BPM),
			})
		}
	}

	if rec.RMSSDMs != nil && *rec.RMSSDMs < cfg.Alert.LowRMSSDMs {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertFatigueHRV,
			Severity: models.SeverityWarn,
			Msg:      fmt.Sprintf("Low RMSSD %.1f ms (fatigue/stress proxy)", *rec.RMSSDMs),
		})
	}

	if rec.LFHF != nil && *rec.LFHF > cfg.Alert.HighLFHF {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertSympatheticLoad,
			Severity: models.SeverityWarn,
			Msg:      fmt.Sprintf("High LF/HF %.2f (sympathetic dominance proxy)", *rec.LFHF),
		})
	}

	if rec.CVRR != nil && *rec.CVRR > cfg.Alert.IrregularWarn {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertIrregularRhythm,
			Severity: models.SeverityWarn,
			Msg:      fmt.Sprintf("Irregular RR variability (CVRR %.2f)", *rec.CVRR),
		})
	}

	if rec.PSI != nil {
		if *rec.PSI >= cfg.Alert.PSIDanger {
			alerts = append(alerts, models.Alert{
				Type:     models.AlertHeatStrain,
				Severity: models.SeverityDanger,
				Msg:      fmt.Sprintf("High physiological strain (PSI %.1f, Tc_est %.2f°C)", *rec.PSI, rec.TcEstC),
			})
		} else if *rec.PSI >= cfg.Alert.PSIWarn {
			alerts = append(alerts, models.Alert{
				Type:     models.AlertHeatStrain,
				Severity: models.SeverityWarn,
				Msg:      fmt.Sprintf("Rising physiological strain (PSI %.1f, Tc_est %.2f°C)", *rec.PSI, rec.TcEstC),
			})
		}
	}

	if rec.FatigueScore != nil && *rec.FatigueScore >= cfg.Alert.FatigueWarn {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertFatigueComposite,
			Severity: models.SeverityWarn,
			Msg:      fmt.Sprintf("High fatigue score %.0f/100", *rec.FatigueScore),
		})
	}

	if rec.CardiacRiskScore != nil && *rec.CardiacRiskScore >= cfg.Alert.CardiacWarn {
		alerts = append(alerts, models.Alert{
			Type:     models.AlertCardiacConcern,
			Severity: models.SeverityDanger,
			Msg:      fmt.Sprintf("Elevated cardiac concern %.0f/100 (operational flag)", *rec.CardiacRiskScore),
		})
	}

	if len(alerts) > 0 {
		e.logger.Debug("Alert rules fired",
			zap.String("team_id", rec.TeamID),
			zap.String("ff_id", rec.FFID),
			zap.Int("count", len(alerts)),
		)
	}

	return alerts
}
