package config

import (
	"os"
	"strconv"
	"strings"
)

// Источники каталога тарифов
const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	Catalog   CatalogConfig   `json:"catalog"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// ServerConfig представляет конфигурацию HTTP сервера
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

// DatabaseConfig используется только при CATALOG_SOURCE=postgres
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig представляет конфигурацию Redis (нужен для rate limiting)
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig представляет конфигурацию Kafka
type KafkaConfig struct {
	Enabled bool     `json:"enabled"`
	Brokers []string `json:"brokers"`
	Topics  Topics   `json:"topics"`
}

// Topics представляет список топиков Kafka
type Topics struct {
	Quotes  string `json:"quotes"`
	Catalog string `json:"catalog"`
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// CatalogConfig описывает откуда загружать каталог тарифов и зарезервированные метки.
type CatalogConfig struct {
	Source             string  `json:"source"` // embedded | file | postgres
	Path               string  `json:"path"`
	ECToUSRate         float64 `json:"ec_to_us_rate"`
	CruiseShipPrefix   string  `json:"cruise_ship_prefix"`
	KingstownTourName  string  `json:"kingstown_tour_name"`
	PerPassengerSuffix string  `json:"per_passenger_suffix"`
	SmallGroupSuffix   string  `json:"small_group_suffix"`
	SmallGroupMax      int     `json:"small_group_max"`
	FlatTier           string  `json:"flat_tier"`
}

// RateLimitConfig описывает настройки rate limiting
type RateLimitConfig struct {
	Enabled          bool   `json:"enabled"`
	Requests         int    `json:"requests"`          // запросы к каталогу за окно
	EstimateRequests int    `json:"estimate_requests"` // расчёты стоимости за окно
	WindowSeconds    int    `json:"window_seconds"`
	KeyPrefix        string `json:"key_prefix"`
}

// MetricsConfig описывает экспорт метрик Prometheus
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "fares"),
			Password: getEnv("DB_PASSWORD", "fares"),
			DBName:   getEnv("DB_NAME", "fare_catalog"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topics: Topics{
				Quotes:  getEnv("KAFKA_TOPIC_QUOTES", "fare-quotes"),
				Catalog: getEnv("KAFKA_TOPIC_CATALOG", "fare-catalog"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Catalog: CatalogConfig{
			Source:             strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceEmbedded)),
			Path:               getEnv("CATALOG_PATH", ""),
			ECToUSRate:         getEnvAsFloat("FARE_EC_TO_US_RATE", 2.70),
			CruiseShipPrefix:   getEnv("CATALOG_CRUISE_SHIP_PREFIX", "From Cruise Ship Berth"),
			KingstownTourName:  getEnv("CATALOG_KINGSTOWN_TOUR_NAME", "Tours around Kingstown (Minimum of two (2) hours)"),
			PerPassengerSuffix: getEnv("CATALOG_PER_PASSENGER_SUFFIX", "(Per Passenger)"),
			SmallGroupSuffix:   getEnv("CATALOG_SMALL_GROUP_SUFFIX", "(1 to 3 Passengers)"),
			SmallGroupMax:      getEnvAsInt("CATALOG_SMALL_GROUP_MAX", 3),
			FlatTier:           getEnv("FARE_FLAT_TIER", "1 to 4"),
		},
		RateLimit: RateLimitConfig{
			Enabled:          getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:         getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			EstimateRequests: getEnvAsInt("RATE_LIMIT_ESTIMATE_REQUESTS", 30),
			WindowSeconds:    getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:        getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}
}

// getEnv получает значение переменной окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int с значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat получает значение переменной окружения как float64 с значением по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool с значением по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}
