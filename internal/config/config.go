package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config 生物医学信号服务配置
//
// 所有阈值与系数都可通过环境变量覆盖，默认值与边缘侧演示部署保持一致。
type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	MQTT struct {
		Broker   string
		ClientID string
		Username string
		Password string
		QoS      byte

		// 主题配置
		SubTopic        string // 订阅主题，如 "raw/ECG/+/+"
		TelemetryPrefix string // 指标发布主题前缀，如 "Telemetry"
	}

	// Redis 缓存配置（最新指标/报警镜像，供前端读取）
	Cache struct {
		KeyPrefix      string // 缓存键前缀，如 "biomed:ff:"
		RealtimeSuffix string // 实时指标键后缀，如 ":realtime"
		AlertSuffix    string // 报警键后缀，如 ":alerts"
		RealtimeTTL    int    // 实时指标 TTL（秒）
		AlertTTL       int    // 报警 TTL（秒）
	}

	// 信号处理配置
	Signal struct {
		DefaultFs         float64 // 默认采样率（Hz），Polar H10 PMD ECG 约 130
		WindowSec         float64 // HRV 分析窗口（秒）
		MinSecForAnalysis float64 // 最小可分析时长（秒）
		BufferWindowMult  int     // 环形缓冲容量 = 窗口样本数 × 倍数

		BandpassLowHz  float64 // 带通下限（Hz）
		BandpassHighHz float64 // 带通上限（Hz）
		NotchHz        float64 // 工频陷波（Hz），欧洲 50
		NotchQ         float64 // 陷波 Q 值
	}

	// QRS 检测配置
	Detector struct {
		RefractorySec float64 // 不应期（秒），0.25 即 240 bpm 上限
		PeakPromFrac  float64 // 峰值显著度系数
	}

	// 报警阈值配置
	Alert struct {
		TachyBPM      float64 // 心动过速阈值（bpm）
		BradyBPM      float64 // 心动过缓阈值（bpm）
		LowRMSSDMs    float64 // 低 RMSSD 阈值（ms），疲劳/应激代理
		HighLFHF      float64 // 高 LF/HF 阈值，交感优势代理
		LowSQI        float64 // 低信号质量阈值
		PSIWarn       float64 // 热应变警告阈值
		PSIDanger     float64 // 热应变危险阈值
		IrregularWarn float64 // 节律不齐阈值（CVRR）
		FatigueWarn   float64 // 疲劳综合评分警告阈值
		CardiacWarn   float64 // 心脏风险评分警告阈值
	}

	// 核心体温/热负荷估计系数（演示级启发式模型，系数按原样保留，勿调优）
	Heat struct {
		BaseTcC         float64 // 基础核心体温（°C）
		HRCoef          float64 // 心率抬升系数（°C/bpm）
		AmbientCoef     float64 // 环境温度系数（°C/°C）
		DefaultAmbientC float64 // 默认环境温度（°C）
		TcMinC          float64 // 估计下限（°C）
		TcMaxC          float64 // 估计上限（°C）
		MaxGapSec       float64 // 热负荷积分最大间隔（秒），超过视为会话中断
	}

	// 基线追踪配置（慢速 EWMA）
	Baseline struct {
		MinSQI       float64 // 基线更新所需最低信号质量
		HRWeight     float64 // 心率基线权重
		RMSSDWeight  float64 // RMSSD 基线权重
		TcWeight     float64 // 核心体温基线权重
		InitHRBpm    float64 // 心率基线初值（bpm）
		InitRMSSDMs  float64 // RMSSD 基线初值（ms）
		InitTcC      float64 // 核心体温基线初值（°C）
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 数据库
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "owlrd")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// MQTT
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://127.0.0.1:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "wisefido-biomed")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 0
	cfg.MQTT.SubTopic = getEnv("SUB_TOPIC", "raw/ECG/+/+")
	cfg.MQTT.TelemetryPrefix = getEnv("PUB_TELEM_PREFIX", "Telemetry")

	// 缓存
	cfg.Cache.KeyPrefix = getEnv("CACHE_KEY_PREFIX", "biomed:ff:")
	cfg.Cache.RealtimeSuffix = ":realtime"
	cfg.Cache.AlertSuffix = ":alerts"
	cfg.Cache.RealtimeTTL = 60
	cfg.Cache.AlertTTL = 30

	// 信号处理
	cfg.Signal.DefaultFs = getEnvFloat("DEFAULT_FS", 130.0)
	cfg.Signal.WindowSec = getEnvFloat("WINDOW_SEC", 30.0)
	cfg.Signal.MinSecForAnalysis = getEnvFloat("MIN_SEC_FOR_ANALYSIS", 10.0)
	cfg.Signal.BufferWindowMult = getEnvInt("BUFFER_WINDOW_MULT", 5)
	cfg.Signal.BandpassLowHz = getEnvFloat("BANDPASS_LOW_HZ", 0.5)
	cfg.Signal.BandpassHighHz = getEnvFloat("BANDPASS_HIGH_HZ", 40.0)
	cfg.Signal.NotchHz = getEnvFloat("NOTCH_HZ", 50.0)
	cfg.Signal.NotchQ = getEnvFloat("NOTCH_Q", 30.0)

	// QRS 检测
	cfg.Detector.RefractorySec = getEnvFloat("REFRACTORY_SEC", 0.25)
	cfg.Detector.PeakPromFrac = getEnvFloat("PEAK_PROM_FRAC", 0.6)

	// 报警阈值
	cfg.Alert.TachyBPM = getEnvFloat("TACHY_BPM", 170)
	cfg.Alert.BradyBPM = getEnvFloat("BRADY_BPM", 45)
	cfg.Alert.LowRMSSDMs = getEnvFloat("LOW_RMSSD_MS", 18)
	cfg.Alert.HighLFHF = getEnvFloat("HIGH_LFHF", 2.5)
	cfg.Alert.LowSQI = getEnvFloat("LOW_SQI", 0.30)
	cfg.Alert.PSIWarn = getEnvFloat("PSI_WARN", 6.5)
	cfg.Alert.PSIDanger = getEnvFloat("PSI_DANGER", 7.5)
	cfg.Alert.IrregularWarn = getEnvFloat("IRREGULAR_WARN", 0.18)
	cfg.Alert.FatigueWarn = getEnvFloat("FATIGUE_WARN", 70)
	cfg.Alert.CardiacWarn = getEnvFloat("CARDIAC_WARN", 70)

	// 核心体温/热负荷
	cfg.Heat.BaseTcC = getEnvFloat("HEAT_BASE_TC_C", 36.8)
	cfg.Heat.HRCoef = getEnvFloat("HEAT_HR_COEF", 0.018)
	cfg.Heat.AmbientCoef = getEnvFloat("HEAT_AMBIENT_COEF", 0.02)
	cfg.Heat.DefaultAmbientC = getEnvFloat("HEAT_DEFAULT_AMBIENT_C", 25.0)
	cfg.Heat.TcMinC = getEnvFloat("HEAT_TC_MIN_C", 36.5)
	cfg.Heat.TcMaxC = getEnvFloat("HEAT_TC_MAX_C", 40.2)
	cfg.Heat.MaxGapSec = getEnvFloat("HEAT_MAX_GAP_SEC", 60.0)

	// 基线追踪
	cfg.Baseline.MinSQI = getEnvFloat("BASELINE_MIN_SQI", 0.35)
	cfg.Baseline.HRWeight = getEnvFloat("BASELINE_HR_WEIGHT", 0.02)
	cfg.Baseline.RMSSDWeight = getEnvFloat("BASELINE_RMSSD_WEIGHT", 0.02)
	cfg.Baseline.TcWeight = getEnvFloat("BASELINE_TC_WEIGHT", 0.005)
	cfg.Baseline.InitHRBpm = getEnvFloat("BASELINE_INIT_HR_BPM", 85.0)
	cfg.Baseline.InitRMSSDMs = getEnvFloat("BASELINE_INIT_RMSSD_MS", 30.0)
	cfg.Baseline.InitTcC = getEnvFloat("BASELINE_INIT_TC_C", 37.0)

	// 日志
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// GetDSN 构建数据库连接字符串
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
