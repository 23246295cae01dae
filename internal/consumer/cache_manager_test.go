package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/models"
)

func setupCacheManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg, err := config.Load()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheManager(cfg, client, zap.NewNop()), mr
}

func fp(v float64) *float64 { return &v }

func TestUpdateRealtimeCache_RoundTrip(t *testing.T) {
	cm, mr := setupCacheManager(t)
	ctx := context.Background()

	rec := &models.MetricsRecord{
		TeamID:     "Team_A",
		FFID:       "FF_01",
		ObservedAt: "2026-08-25T12:00:00Z",
		Source:     "wisefido-biomed",
		SQI:        0.82,
		BPM:        fp(75.0),
	}

	require.NoError(t, cm.UpdateRealtimeCache(ctx, rec))

	// 键格式与 TTL
	key := "biomed:ff:Team_A:FF_01:realtime"
	require.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key).Seconds(), 0.0)

	got, err := cm.GetRealtimeData(ctx, "Team_A", "FF_01")
	require.NoError(t, err)
	assert.Equal(t, "Team_A", got.TeamID)
	assert.Equal(t, 0.82, got.SQI)
	require.NotNil(t, got.BPM)
	assert.Equal(t, 75.0, *got.BPM)
}

func TestUpdateRealtimeCache_NullableFieldsSurviveJSON(t *testing.T) {
	cm, _ := setupCacheManager(t)
	ctx := context.Background()

	rec := &models.MetricsRecord{
		TeamID: "Team_A",
		FFID:   "FF_01",
		SQI:    0.1,
		// BPM 等可空指标保持 nil
	}

	require.NoError(t, cm.UpdateRealtimeCache(ctx, rec))

	got, err := cm.GetRealtimeData(ctx, "Team_A", "FF_01")
	require.NoError(t, err)
	assert.Nil(t, got.BPM)
	assert.Nil(t, got.RMSSDMs)
	assert.Nil(t, got.CardiacRiskScore)
}

func TestGetRealtimeData_NotFound(t *testing.T) {
	cm, _ := setupCacheManager(t)

	_, err := cm.GetRealtimeData(context.Background(), "Team_X", "FF_99")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestUpdateAlertCache(t *testing.T) {
	cm, mr := setupCacheManager(t)
	ctx := context.Background()

	alerts := []models.Alert{
		{Type: models.AlertTachycardia, Severity: models.SeverityDanger, Msg: "High HR 185 bpm"},
		{Type: models.AlertHeatStrain, Severity: models.SeverityWarn, Msg: "Rising physiological strain (PSI 6.8, Tc_est 38.20°C)"},
	}

	require.NoError(t, cm.UpdateAlertCache(ctx, "Team_A", "FF_01", alerts))

	key := "biomed:ff:Team_A:FF_01:alerts"
	raw, err := mr.Get(key)
	require.NoError(t, err)

	var got []models.Alert
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Len(t, got, 2)
	assert.Equal(t, models.AlertTachycardia, got[0].Type)
	assert.Equal(t, models.SeverityWarn, got[1].Severity)
}
