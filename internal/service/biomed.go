package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"wisefido-biomed/internal/config"
	"wisefido-biomed/internal/consumer"
	"wisefido-biomed/internal/mqtt"
	"wisefido-biomed/internal/pipeline"
	"wisefido-biomed/internal/repository"
)

// BiomedService 生物医学信号分析服务
//
// 组装数据库、Redis、MQTT 与分析管线，持有全部组件的生命周期。
type BiomedService struct {
	config     *config.Config
	logger     *zap.Logger
	db         *sql.DB
	redis      *redis.Client
	mqttClient *mqtt.Client
	consumer   *consumer.MQTTConsumer
}

// NewBiomedService 创建服务
func NewBiomedService(cfg *config.Config, logger *zap.Logger) (*BiomedService, error) {
	// 初始化数据库
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 初始化Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 初始化MQTT
	mqttClient, err := mqtt.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// 组装分析管线与旁路组件
	pl := pipeline.NewPipeline(cfg, logger)
	cacheManager := consumer.NewCacheManager(cfg, redisClient, logger)
	alarmRepo := repository.NewAlarmEventsRepository(db, logger)

	mqttConsumer := consumer.NewMQTTConsumer(cfg, mqttClient, pl, cacheManager, alarmRepo, logger)

	return &BiomedService{
		config:     cfg,
		logger:     logger,
		db:         db,
		redis:      redisClient,
		mqttClient: mqttClient,
		consumer:   mqttConsumer,
	}, nil
}

// Start 启动服务
func (s *BiomedService) Start(ctx context.Context) error {
	s.logger.Info("Starting biomed service components")

	// 启动MQTT消费者（阻塞直到 ctx 取消）
	if err := s.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MQTT consumer: %w", err)
	}

	return nil
}

// Stop 停止服务
func (s *BiomedService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping biomed service")

	// 停止Consumer
	if s.consumer != nil {
		if err := s.consumer.Stop(ctx); err != nil {
			s.logger.Error("Error stopping consumer", zap.Error(err))
		}
	}

	// 断开MQTT
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	// 关闭Redis
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Error closing redis", zap.Error(err))
		}
	}

	// 关闭数据库
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Error closing database", zap.Error(err))
		}
	}

	s.logger.Info("Biomed service stopped")
	return nil
}
