package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"timedin"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"timedin"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"tdin"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// Cookie 客户端（浏览器端日历/仪表盘）需要的会话与 CSRF 配置
	SessionSecret string `env:"SESSION_SECRET"`
	CSRFEnabled   bool   `env:"CSRF_ENABLED" envDefault:"false"`

	// 考勤站点围栏配置
	// 站点坐标：J23X+XHW San Juan City, Metro Manila
	SiteLatitude     float64 `env:"SITE_LATITUDE" envDefault:"14.605213"`
	SiteLongitude    float64 `env:"SITE_LONGITUDE" envDefault:"121.048929"`
	SiteRadiusMeters float64 `env:"SITE_RADIUS_METERS" envDefault:"800"` // 放宽半径，吸收消费级 GPS 漂移
	GeoTimeoutSecs   int     `env:"GEO_TIMEOUT_SECONDS" envDefault:"10"` // 定位获取上限，超时按失败处理

	// 进度与汇总配置
	TargetHours        int    `env:"TARGET_HOURS" envDefault:"486"` // 实训累计目标（小时），用户档案可覆盖
	WeeklyWindowDays   int    `env:"WEEKLY_WINDOW_DAYS" envDefault:"7"`
	HistoryQueryLimit  int    `env:"HISTORY_QUERY_LIMIT" envDefault:"60"`
	ProgressQueryLimit int    `env:"PROGRESS_QUERY_LIMIT" envDefault:"120"`
	DefaultTimezone    string `env:"DEFAULT_TIMEZONE" envDefault:"Asia/Manila"`

	// 收班清扫配置：每天该时间后扫描缺少 time_out 的记录
	SweepAfter      string `env:"SWEEP_AFTER" envDefault:"21:00:00"`
	SweepDelaySecs  int    `env:"SWEEP_DELAY_SECONDS" envDefault:"0"`
	SweepBatchLimit int    `env:"SWEEP_BATCH_LIMIT" envDefault:"500"`

	// 短信服务配置（主管缺卡提醒）
	// 注意：AccessKey 和 SecretKey 通过阿里云 SDK 的环境变量自动获取
	// 需要设置环境变量：ALIBABA_CLOUD_ACCESS_KEY_ID 和 ALIBABA_CLOUD_ACCESS_KEY_SECRET
	SMSProvider     string `env:"SMS_PROVIDER" envDefault:"mock"` // aliyun, mock
	SMSSignName     string `env:"SMS_SIGN_NAME"`
	SMSTemplateCode string `env:"SMS_TEMPLATE_CODE"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		if Cfg.IsProduction() {
			log.Fatal("JWT_SECRET is required in production")
		}
		log.Printf("WARN: JWT_SECRET is not set, using an insecure development secret")
		Cfg.JWTSecret = "dev-only-insecure-secret"
	}

	if Cfg.CSRFEnabled && Cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is required when CSRF_ENABLED=true")
	}

	if Cfg.SiteRadiusMeters <= 0 {
		log.Fatal("SITE_RADIUS_METERS must be positive")
	}

	if Cfg.TargetHours <= 0 {
		log.Fatal("TARGET_HOURS must be positive")
	}

	if Cfg.GeoTimeoutSecs <= 0 {
		log.Fatal("GEO_TIMEOUT_SECONDS must be positive")
	}

	if Cfg.SMSProvider == "aliyun" {
		if Cfg.SMSSignName == "" {
			log.Printf("WARN: SMS_SIGN_NAME is not set, SMS alerts may not work properly")
		}
		if Cfg.SMSTemplateCode == "" {
			log.Printf("WARN: SMS_TEMPLATE_CODE is not set, SMS alerts may not work properly")
		}
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
