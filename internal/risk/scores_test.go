package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisefido-biomed/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func fp(v float64) *float64 { return &v }

func TestFatigueScore_NilBPM(t *testing.T) {
	assert.Nil(t, FatigueScore(ScoreInputs{SQI: 0.9}))
}

func TestFatigueScore_NeutralInputs(t *testing.T) {
	in := ScoreInputs{
		SQI:         0.9,
		BPM:         fp(60.0),
		RMSSDMs:     fp(40.0),
		LFHF:        fp(1.0),
		StressIndex: fp(100.0),
		SampEn:      fp(1.5),
	}

	s := FatigueScore(in)
	require.NotNil(t, s)
	assert.Equal(t, 0.0, *s)
}

func TestFatigueScore_ExtremeInputsSaturate(t *testing.T) {
	in := ScoreInputs{
		SQI:         0.9,
		BPM:         fp(200.0),
		RMSSDMs:     fp(0.0),
		LFHF:        fp(10.0),
		StressIndex: fp(1000.0),
		SampEn:      fp(0.0),
	}

	s := FatigueScore(in)
	require.NotNil(t, s)
	assert.Equal(t, 100.0, *s)
}

func TestFatigueScore_MissingComponentsContributeZero(t *testing.T) {
	// 只有 bpm：180 → (180-100)/80 = 1.0 → 满 30 分
	s := FatigueScore(ScoreInputs{SQI: 0.9, BPM: fp(180.0)})
	require.NotNil(t, s)
	assert.InDelta(t, 30.0, *s, 1e-9)
}

func TestFatigueScore_PartialComponents(t *testing.T) {
	// HR 140 → 0.5·30 = 15；RMSSD 12.5 → 0.5·30 = 15
	s := FatigueScore(ScoreInputs{SQI: 0.9, BPM: fp(140.0), RMSSDMs: fp(12.5)})
	require.NotNil(t, s)
	assert.InDelta(t, 30.0, *s, 1e-9)
}

func TestCardiacRiskScore_LowSQIRefusesToScore(t *testing.T) {
	cfg := testConfig(t)

	// 质量门禁优先于一切：极端心率也不给分数
	in := ScoreInputs{SQI: 0.2, BPM: fp(190.0), EctopyRatio: 0.5}
	assert.Nil(t, CardiacRiskScore(in, cfg))
}

func TestCardiacRiskScore_NilBPM(t *testing.T) {
	cfg := testConfig(t)
	assert.Nil(t, CardiacRiskScore(ScoreInputs{SQI: 0.9}, cfg))
}

func TestCardiacRiskScore_HealthyIsZero(t *testing.T) {
	cfg := testConfig(t)

	in := ScoreInputs{SQI: 0.9, BPM: fp(75.0), CVRR: fp(0.05), EctopyRatio: 0.0}
	s := CardiacRiskScore(in, cfg)
	require.NotNil(t, s)
	assert.Equal(t, 0.0, *s)
}

func TestCardiacRiskScore_HRBands(t *testing.T) {
	cfg := testConfig(t)

	// >175 bpm：35 分
	s := CardiacRiskScore(ScoreInputs{SQI: 0.9, BPM: fp(180.0)}, cfg)
	require.NotNil(t, s)
	assert.InDelta(t, 35.0, *s, 1e-9)

	// 160–175 bpm：20 分
	s = CardiacRiskScore(ScoreInputs{SQI: 0.9, BPM: fp(165.0)}, cfg)
	require.NotNil(t, s)
	assert.InDelta(t, 20.0, *s, 1e-9)

	// <42 bpm：35 分
	s = CardiacRiskScore(ScoreInputs{SQI: 0.9, BPM: fp(38.0)}, cfg)
	require.NotNil(t, s)
	assert.InDelta(t, 35.0, *s, 1e-9)

	// 42–50 bpm：15 分
	s = CardiacRiskScore(ScoreInputs{SQI: 0.9, BPM: fp(46.0)}, cfg)
	require.NotNil(t, s)
	assert.InDelta(t, 15.0, *s, 1e-9)
}

func TestCardiacRiskScore_EctopySaturation(t *testing.T) {
	cfg := testConfig(t)

	// 异位占比 ≥0.10 时饱和到 35 分
	s := CardiacRiskScore(ScoreInputs{SQI: 0.9, BPM: fp(75.0), EctopyRatio: 0.5}, cfg)
	require.NotNil(t, s)
	assert.InDelta(t, 35.0, *s, 1e-9)

	// 一半饱和点 → 17.5 分
	s = CardiacRiskScore(ScoreInputs{SQI: 0.9, BPM: fp(75.0), EctopyRatio: 0.05}, cfg)
	require.NotNil(t, s)
	assert.InDelta(t, 17.5, *s, 1e-9)
}

func TestCardiacRiskScore_IrregularityRamp(t *testing.T) {
	cfg := testConfig(t)

	// CVRR 0.25 = base 0.10 + 满 span 0.15 → 满 30 分
	s := CardiacRiskScore(ScoreInputs{SQI: 0.9, BPM: fp(75.0), CVRR: fp(0.25)}, cfg)
	require.NotNil(t, s)
	assert.InDelta(t, 30.0, *s, 1e-9)
}
