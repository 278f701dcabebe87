package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds the base configuration
type Config struct {
	Server   ServerConfig
	Worker   WorkerConfig
	Redis    RedisConfig
	Survey   SurveyConfig
	QR       QRConfig
	App      AppConfig
	Telegram TelegramConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type WorkerConfig struct {
	Count     int
	QueueSize int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// SurveyConfig carries the defaults for link building. SigningSecret backs
// the static keyring; DatabaseURL, when set, switches to per-store keys.
type SurveyConfig struct {
	Domain           string
	SurveyCode       string
	SigningSecret    string
	DatabaseURL      string
	IncludeTimestamp bool
}

type QRConfig struct {
	BoxSize int
}

type AppConfig struct {
	LogLevel string
}

type TelegramConfig struct {
	BotToken        string
	Channel         string
	Template        string
	ProxyURL        string
	SendingInterval time.Duration
}

// Load loads configuration from environment variables with defaults value
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", ""),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Worker: WorkerConfig{
			Count:     getEnvInt("WORKER_COUNT", 5),
			QueueSize: getEnvInt("WORKER_QUEUE_SIZE", 100),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("REDIS_CACHE_TTL", 30*time.Minute),
		},
		Survey: SurveyConfig{
			Domain:           getEnv("SURVEY_DOMAIN", "pt.surveymonkey.com"),
			SurveyCode:       getEnv("SURVEY_CODE", ""),
			SigningSecret:    getEnv("SIGNING_SECRET", ""),
			DatabaseURL:      getEnv("DATABASE_URL", ""),
			IncludeTimestamp: getEnvBool("INCLUDE_TIMESTAMP", true),
		},
		QR: QRConfig{
			BoxSize: getEnvInt("QR_BOX_SIZE", 10),
		},
		App: AppConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Telegram: TelegramConfig{
			BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
			Channel:         getEnv("TELEGRAM_CHANNEL", ""),
			Template:        getEnv("TELEGRAM_TEMPLATE", ""),
			ProxyURL:        getEnv("TELEGRAM_PROXY_URL", ""),
			SendingInterval: getEnvDuration("TELEGRAM_SENDING_INTERVAL", 10*time.Second),
		},
	}
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
