package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wisefido-biomed/internal/models"
)

func testEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	return NewEvaluator(testConfig(t), zap.NewNop())
}

// healthyRecord 一条不触发任何规则的记录
func healthyRecord() *models.MetricsRecord {
	return &models.MetricsRecord{
		TeamID:     "Team_A",
		FFID:       "FF_01",
		ObservedAt: "2026-08-25T12:00:00Z",
		SQI:        0.85,
		BPM:        fp(75.0),
		RMSSDMs:    fp(40.0),
		LFHF:       fp(1.2),
		CVRR:       fp(0.05),
		PSI:        fp(2.0),
		TcEstC:     37.0,
	}
}

func TestEvaluate_HealthyRecordNoAlerts(t *testing.T) {
	e := testEvaluator(t)
	assert.Empty(t, e.Evaluate(healthyRecord()))
}

func TestEvaluate_LowSQIGatesEverything(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.SQI = 0.1
	rec.BPM = fp(200.0) // 即使心率极端也被门禁挡掉
	rec.PSI = fp(9.0)

	alerts := e.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertSignalQuality, alerts[0].Type)
	assert.Equal(t, models.SeverityInfo, alerts[0].Severity)
	assert.Equal(t, "Low ECG SQI (0.10)", alerts[0].Msg)
}

func TestEvaluate_Tachycardia(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.BPM = fp(185.0)

	alerts := e.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTachycardia, alerts[0].Type)
	assert.Equal(t, models.SeverityDanger, alerts[0].Severity)
	assert.Equal(t, "High HR 185 bpm", alerts[0].Msg)
}

func TestEvaluate_Bradycardia(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.BPM = fp(40.0)

	alerts := e.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertBradycardia, alerts[0].Type)
	assert.Equal(t, models.SeverityDanger, alerts[0].Severity)
}

func TestEvaluate_LowRMSSD(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.RMSSDMs = fp(12.0)

	alerts := e.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertFatigueHRV, alerts[0].Type)
	assert.Equal(t, models.SeverityWarn, alerts[0].Severity)
	assert.Equal(t, "Low RMSSD 12.0 ms (fatigue/stress proxy)", alerts[0].Msg)
}

func TestEvaluate_HighLFHF(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.LFHF = fp(3.7)

	alerts := e.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertSympatheticLoad, alerts[0].Type)
	assert.Equal(t, "High LF/HF 3.70 (sympathetic dominance proxy)", alerts[0].Msg)
}

func TestEvaluate_IrregularRhythm(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.CVRR = fp(0.25)

	alerts := e.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertIrregularRhythm, alerts[0].Type)
	assert.Equal(t, models.SeverityWarn, alerts[0].Severity)
}

func TestEvaluate_PSIWarnVersusDanger(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.PSI = fp(6.8)
	rec.TcEstC = 38.5

	alerts := e.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertHeatStrain, alerts[0].Type)
	assert.Equal(t, models.SeverityWarn, alerts[0].Severity)

	rec.PSI = fp(8.0)
	alerts = e.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertHeatStrain, alerts[0].Type)
	assert.Equal(t, models.SeverityDanger, alerts[0].Severity)
}

func TestEvaluate_CompositeScores(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.FatigueScore = fp(82.0)
	rec.CardiacRiskScore = fp(75.0)

	alerts := e.Evaluate(rec)
	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertFatigueComposite, alerts[0].Type)
	assert.Equal(t, models.SeverityWarn, alerts[0].Severity)
	assert.Equal(t, models.AlertCardiacConcern, alerts[1].Type)
	assert.Equal(t, models.SeverityDanger, alerts[1].Severity)
}

func TestEvaluate_MultipleRulesFireTogether(t *testing.T) {
	e := testEvaluator(t)

	rec := healthyRecord()
	rec.BPM = fp(185.0)
	rec.RMSSDMs = fp(10.0)
	rec.CVRR = fp(0.3)

	alerts := e.Evaluate(rec)
	assert.Len(t, alerts, 3)
}

func TestEvaluate_NilMetricsSkipRules(t *testing.T) {
	e := testEvaluator(t)

	rec := &models.MetricsRecord{
		TeamID: "Team_A",
		FFID:   "FF_01",
		SQI:    0.85,
	}
	assert.Empty(t, e.Evaluate(rec))
}
