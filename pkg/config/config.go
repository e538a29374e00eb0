package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Зеркалит структуру config.yaml.
type AppConfig struct {
	API    APIConfig    `yaml:"api"`
	Seed   SeedConfig   `yaml:"seed"`
	Report ReportConfig `yaml:"report"`
	App    AppSpecific  `yaml:"app"`
}

// APIConfig — параметры подключения к заполняемому REST сервису.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`        // Например "http://localhost:8080"
	HealthTimeout  string `yaml:"health_timeout"`  // Timeout health-check запроса ("5s")
	RequestTimeout string `yaml:"request_timeout"` // Timeout остальных запросов ("10s")
	RateLimit      int    `yaml:"rate_limit"`      // Запросов в минуту, 0 = без ограничения
	BurstLimit     int    `yaml:"burst_limit"`     // Burst для rate limiter
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *APIConfig) GetDefaults() APIConfig {
	result := *c

	if result.BaseURL == "" {
		result.BaseURL = "http://localhost:8080"
	}
	if result.HealthTimeout == "" {
		result.HealthTimeout = "5s"
	}
	if result.RequestTimeout == "" {
		result.RequestTimeout = "10s"
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 1
	}

	return result
}

// HealthTimeoutDuration возвращает распарсенный health_timeout.
// Невалидное значение отсекается в validate(), здесь — дефолт.
func (c *APIConfig) HealthTimeoutDuration() time.Duration {
	return parseDurationOr(c.HealthTimeout, 5*time.Second)
}

// RequestTimeoutDuration возвращает распарсенный request_timeout.
func (c *APIConfig) RequestTimeoutDuration() time.Duration {
	return parseDurationOr(c.RequestTimeout, 10*time.Second)
}

// SeedConfig — объём и поведение генерации данных.
type SeedConfig struct {
	ProductCount        int   `yaml:"product_count"`         // Сколько продуктов создать
	ProgressEvery       int   `yaml:"progress_every"`        // Шаг вывода прогресса
	MaxReportedFailures int   `yaml:"max_reported_failures"` // Сколько ошибок печатать подробно
	Seed                int64 `yaml:"seed"`                  // 0 = случайный seed от времени
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
//
// product_count: 0 трактуется как "не задано". Чтобы пропустить генерацию
// продуктов, используйте отрицательное значение (см. ProductTotal).
func (c *SeedConfig) GetDefaults() SeedConfig {
	result := *c

	if result.ProductCount == 0 {
		result.ProductCount = 1000
	}
	if result.ProgressEvery <= 0 {
		result.ProgressEvery = 50
	}
	if result.MaxReportedFailures == 0 {
		result.MaxReportedFailures = 10
	}

	return result
}

// ProductTotal возвращает фактическое число продуктов для создания.
func (c *SeedConfig) ProductTotal() int {
	if c.ProductCount < 0 {
		return 0
	}
	return c.ProductCount
}

// ReportConfig — выгрузка итогов прогона в S3 (опционально).
type ReportConfig struct {
	Enabled bool     `yaml:"enabled"`
	Prefix  string   `yaml:"prefix"`
	S3      S3Config `yaml:"s3"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ReportConfig) GetDefaults() ReportConfig {
	result := *c
	if result.Prefix == "" {
		result.Prefix = "pagination-seeder"
	}
	return result
}

// S3Config — настройки объектного хранилища.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug   bool   `yaml:"debug"`
	LogFile string `yaml:"log_file"` // Пусто = файловый лог выключен
}

// Default возвращает конфигурацию без файла: все секции на дефолтах.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
//
// Если рядом с конфигом лежит .env, он загружается до подстановки.
// Уже выставленные переменные окружения не перезаписываются.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. .env рядом с конфигом (необязателен)
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	// 3. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(rawBytes)
}

// Parse разбирает содержимое config.yaml: подставляет ${VAR},
// применяет дефолты и валидирует результат.
func Parse(raw []byte) (*AppConfig, error) {
	contentWithEnv := os.ExpandEnv(string(raw))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	c.API = c.API.GetDefaults()
	c.Seed = c.Seed.GetDefaults()
	c.Report = c.Report.GetDefaults()
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host: %q", c.API.BaseURL)
	}

	for name, value := range map[string]string{
		"api.health_timeout":  c.API.HealthTimeout,
		"api.request_timeout": c.API.RequestTimeout,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, value)
		}
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.API.BurstLimit < 0 {
		return fmt.Errorf("api.burst_limit must not be negative")
	}

	if c.Report.Enabled {
		if c.Report.S3.Endpoint == "" {
			return fmt.Errorf("report.s3.endpoint is required when report is enabled")
		}
		if c.Report.S3.Bucket == "" {
			return fmt.Errorf("report.s3.bucket is required when report is enabled")
		}
	}

	return nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
