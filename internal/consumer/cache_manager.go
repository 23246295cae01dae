package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/models"
)

// CacheManager 实时指标/报警的 Redis 缓存镜像（供前端读取最新状态）
type CacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// realtimeKey 实时指标缓存键，如 "biomed:ff:Team_A:FF_A:realtime"
func (c *CacheManager) realtimeKey(team, ff string) string {
	return c.config.Cache.KeyPrefix + team + ":" + ff + c.config.Cache.RealtimeSuffix
}

// alertKey 报警缓存键，如 "biomed:ff:Team_A:FF_A:alerts"
func (c *CacheManager) alertKey(team, ff string) string {
	return c.config.Cache.KeyPrefix + team + ":" + ff + c.config.Cache.AlertSuffix
}

// UpdateRealtimeCache 写入最新指标记录（带 TTL）
func (c *CacheManager) UpdateRealtimeCache(ctx context.Context, rec *models.MetricsRecord) error {
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics record: %w", err)
	}

	key := c.realtimeKey(rec.TeamID, rec.FFID)
	ttl := time.Duration(c.config.Cache.RealtimeTTL) * time.Second
	if err := c.redisClient.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set realtime cache: %w", err)
	}
	return nil
}

// UpdateAlertCache 写入最新报警列表（带 TTL）
func (c *CacheManager) UpdateAlertCache(ctx context.Context, team, ff string, alerts []models.Alert) error {
	jsonData, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	key := c.alertKey(team, ff)
	ttl := time.Duration(c.config.Cache.AlertTTL) * time.Second
	if err := c.redisClient.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set alert cache: %w", err)
	}
	return nil
}

// GetRealtimeData 读取最新指标记录
func (c *CacheManager) GetRealtimeData(ctx context.Context, team, ff string) (*models.MetricsRecord, error) {
	val, err := c.redisClient.Get(ctx, c.realtimeKey(team, ff)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("realtime data not found: %s/%s", team, ff)
		}
		return nil, fmt.Errorf("failed to get realtime data: %w", err)
	}

	var rec models.MetricsRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal realtime data: %w", err)
	}
	return &rec, nil
}
