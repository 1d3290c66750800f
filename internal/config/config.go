package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr   string        `env:"REDIS_ADDR"`
	RedisPass   string        `env:"REDIS_PASSWORD"`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0"`
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"10m"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Сервис принятия решений, при пустом DecisionURL используются правила
	DecisionURL     string        `env:"DECISION_URL"`
	DecisionSecret  string        `env:"DECISION_SECRET"`
	DecisionTimeout time.Duration `env:"DECISION_TIMEOUT" envDefault:"30s"`

	// Симуляция
	SimSeed      int64   `env:"SIM_SEED" envDefault:"42"`
	CityWidth    int     `env:"CITY_WIDTH" envDefault:"1000"`
	CityHeight   int     `env:"CITY_HEIGHT" envDefault:"1000"`
	TickMinutes  float64 `env:"TICK_MINUTES" envDefault:"5"`
	TrafficDecay float64 `env:"TRAFFIC_DECAY" envDefault:"0.95"`
	BundlePolicy string  `env:"BUNDLE_POLICY" envDefault:"partial"`
	ScenarioFile string  `env:"SCENARIO_FILE"`

	// Контроллер
	MaxEpochSteps   int           `env:"MAX_EPOCH_STEPS" envDefault:"100"`
	MaxTaskAttempts int           `env:"MAX_TASK_ATTEMPTS" envDefault:"3"`
	StepMaxRetries  int           `env:"STEP_MAX_RETRIES" envDefault:"3"`
	StepRetryDelay  time.Duration `env:"STEP_RETRY_DELAY" envDefault:"2s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		SnapshotTTL:       getEnvAsDuration("SNAPSHOT_TTL", 10*time.Minute),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		DecisionURL:       os.Getenv("DECISION_URL"),
		DecisionSecret:    os.Getenv("DECISION_SECRET"),
		DecisionTimeout:   getEnvAsDuration("DECISION_TIMEOUT", 30*time.Second),
		SimSeed:           int64(getEnvAsInt("SIM_SEED", 42)),
		CityWidth:         getEnvAsInt("CITY_WIDTH", 1000),
		CityHeight:        getEnvAsInt("CITY_HEIGHT", 1000),
		TickMinutes:       getEnvAsFloat("TICK_MINUTES", 5),
		TrafficDecay:      getEnvAsFloat("TRAFFIC_DECAY", 0.95),
		BundlePolicy:      getEnv("BUNDLE_POLICY", "partial"),
		ScenarioFile:      os.Getenv("SCENARIO_FILE"),
		MaxEpochSteps:     getEnvAsInt("MAX_EPOCH_STEPS", 100),
		MaxTaskAttempts:   getEnvAsInt("MAX_TASK_ATTEMPTS", 3),
		StepMaxRetries:    getEnvAsInt("STEP_MAX_RETRIES", 3),
		StepRetryDelay:    getEnvAsDuration("STEP_RETRY_DELAY", 2*time.Second),
	}

	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.CityWidth <= 0 || c.CityHeight <= 0 {
		return fmt.Errorf("config: city size must be positive, got %dx%d", c.CityWidth, c.CityHeight)
	}
	if c.TickMinutes <= 0 {
		return fmt.Errorf("config: TICK_MINUTES must be positive")
	}
	if c.MaxEpochSteps < 1 || c.MaxTaskAttempts < 1 || c.StepMaxRetries < 1 {
		return fmt.Errorf("config: MAX_EPOCH_STEPS, MAX_TASK_ATTEMPTS and STEP_MAX_RETRIES must be at least 1")
	}
	if c.BundlePolicy != "partial" && c.BundlePolicy != "rollback" {
		return fmt.Errorf("config: BUNDLE_POLICY must be partial or rollback, got %q", c.BundlePolicy)
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
