package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/models"
	"wisefido-biomed/internal/mqtt"
	"wisefido-biomed/internal/pipeline"
	"wisefido-biomed/internal/repository"
)

// MQTTConsumer MQTT 消息消费者
//
// 订阅 raw/ECG/{team}/{ff} 原始捆包，交给分析管线处理，
// 把指标记录发布到 Telemetry/{team}/{ff}，报警发布到 Telemetry/{team}/{ff}/alerts，
// 同时镜像到 Redis 缓存并落库报警事件。
type MQTTConsumer struct {
	config       *config.Config
	mqttClient   *mqtt.Client
	pipeline     *pipeline.Pipeline
	cacheManager *CacheManager
	alarmRepo    *repository.AlarmEventsRepository
	logger       *zap.Logger
}

// NewMQTTConsumer 创建 MQTT 消费者
//
// cacheManager 和 alarmRepo 可以为 nil（如测试或无 DB 的边缘部署），
// 对应的旁路写入会被跳过。
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient *mqtt.Client,
	pl *pipeline.Pipeline,
	cacheManager *CacheManager,
	alarmRepo *repository.AlarmEventsRepository,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:       cfg,
		mqttClient:   mqttClient,
		pipeline:     pl,
		cacheManager: cacheManager,
		alarmRepo:    alarmRepo,
		logger:       logger,
	}
}

// Start 启动消费者
func (c *MQTTConsumer) Start(ctx context.Context) error {
	topic := c.config.MQTT.SubTopic
	if topic == "" {
		return fmt.Errorf("ECG subscribe topic not configured")
	}

	if err := c.mqttClient.Subscribe(topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to ECG topic: %w", err)
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", topic),
		zap.String("telemetry_prefix", c.config.MQTT.TelemetryPrefix),
	)

	// 等待上下文取消
	<-ctx.Done()
	return nil
}

// Stop 停止消费者
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	topic := c.config.MQTT.SubTopic
	if topic != "" {
		if err := c.mqttClient.Unsubscribe(topic); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}

	c.logger.Info("MQTT consumer stopped")
	return nil
}

// ParseTopic 解析 raw/ECG/{team}/{ff} 主题，返回 (team, ff)
func ParseTopic(topic string) (string, string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[2] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("unexpected ECG topic format: %s", topic)
	}
	return parts[2], parts[3], nil
}

// handleMessage 处理一条原始 ECG 捆包消息
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	team, ff, err := ParseTopic(topic)
	if err != nil {
		c.logger.Warn("Dropping message with malformed topic",
			zap.String("topic", topic),
		)
		return err
	}

	// 1. 跑完整分析周期（缓冲不足时返回 nil，静默等待下一包）
	rec, alerts := c.pipeline.Process(team, ff, payload)
	if rec == nil {
		return nil
	}

	// 2. 发布指标记录
	if err := c.publishRecord(rec); err != nil {
		c.logger.Error("Failed to publish metrics record",
			zap.String("team_id", rec.TeamID),
			zap.String("ff_id", rec.FFID),
			zap.Error(err),
		)
	}

	// 3. 有报警才发布报警信封
	if len(alerts) > 0 {
		if err := c.publishAlerts(rec, alerts); err != nil {
			c.logger.Error("Failed to publish alerts",
				zap.String("team_id", rec.TeamID),
				zap.String("ff_id", rec.FFID),
				zap.Error(err),
			)
		}
	}

	// 4. 镜像到 Redis 缓存（失败只记日志，不影响主流程）
	c.mirrorToCache(rec, alerts)

	// 5. 报警事件落库
	c.persistAlarmEvents(rec, alerts)

	return nil
}

// publishRecord 发布指标记录到 Telemetry/{team}/{ff}
func (c *MQTTConsumer) publishRecord(rec *models.MetricsRecord) error {
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics record: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/%s", c.config.MQTT.TelemetryPrefix, rec.TeamID, rec.FFID)
	if err := c.mqttClient.Publish(topic, c.config.MQTT.QoS, false, jsonData); err != nil {
		return err
	}

	c.logger.Debug("Published metrics record",
		zap.String("topic", topic),
		zap.Float64("sqi", rec.SQI),
	)
	return nil
}

// publishAlerts 发布报警信封到 Telemetry/{team}/{ff}/alerts
func (c *MQTTConsumer) publishAlerts(rec *models.MetricsRecord, alerts []models.Alert) error {
	envelope := models.AlertEnvelope{
		TeamID:     rec.TeamID,
		FFID:       rec.FFID,
		ObservedAt: rec.ObservedAt,
		Alerts:     alerts,
	}

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal alert envelope: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/%s/alerts", c.config.MQTT.TelemetryPrefix, rec.TeamID, rec.FFID)
	if err := c.mqttClient.Publish(topic, c.config.MQTT.QoS, false, jsonData); err != nil {
		return err
	}

	c.logger.Info("Published alerts",
		zap.String("topic", topic),
		zap.Int("count", len(alerts)),
	)
	return nil
}

// mirrorToCache 把最新指标与报警镜像到 Redis
func (c *MQTTConsumer) mirrorToCache(rec *models.MetricsRecord, alerts []models.Alert) {
	if c.cacheManager == nil {
		return
	}

	ctx := context.Background()
	if err := c.cacheManager.UpdateRealtimeCache(ctx, rec); err != nil {
		c.logger.Error("Failed to update realtime cache",
			zap.String("team_id", rec.TeamID),
			zap.String("ff_id", rec.FFID),
			zap.Error(err),
		)
	}
	if len(alerts) > 0 {
		if err := c.cacheManager.UpdateAlertCache(ctx, rec.TeamID, rec.FFID, alerts); err != nil {
			c.logger.Error("Failed to update alert cache",
				zap.String("team_id", rec.TeamID),
				zap.String("ff_id", rec.FFID),
				zap.Error(err),
			)
		}
	}
}

// persistAlarmEvents 每条报警写一条事件记录，附带触发时刻的指标快照
func (c *MQTTConsumer) persistAlarmEvents(rec *models.MetricsRecord, alerts []models.Alert) {
	if c.alarmRepo == nil || len(alerts) == 0 {
		return
	}

	snapshot, err := json.Marshal(rec)
	if err != nil {
		c.logger.Error("Failed to marshal trigger snapshot", zap.Error(err))
		return
	}

	ctx := context.Background()
	for _, alert := range alerts {
		event := &models.AlarmEvent{
			TeamID:      rec.TeamID,
			FFID:        rec.FFID,
			EventType:   alert.Type,
			Severity:    alert.Severity,
			Message:     alert.Msg,
			TriggerData: snapshot,
		}
		if err := c.alarmRepo.CreateAlarmEvent(ctx, event); err != nil {
			c.logger.Error("Failed to persist alarm event",
				zap.String("team_id", rec.TeamID),
				zap.String("ff_id", rec.FFID),
				zap.String("event_type", alert.Type),
				zap.Error(err),
			)
			// 继续写下一条，不中断
		}
	}
}
