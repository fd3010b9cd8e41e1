// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	Ingest    IngestConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	AnalysisTTLSeconds int
}

// AnalyticsConfig carries the classification and forecasting knobs. Defaults
// match the standard ABC 80/95 and XYZ 10/25 boundaries.
type AnalyticsConfig struct {
	LowStockThreshold    int
	AppendRetries        int
	AbcClassAThreshold   float64
	AbcClassBThreshold   float64
	XyzStableMax         float64
	XyzVariableMax       float64
	XyzBucketHours       int
	ForecastLookbackDays int
}

// IngestConfig configures the movement-file watcher and its object storage.
type IngestConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	Bucket          string
	Region          string
	UseSSL          bool
	Prefix          string
	DownloadDir     string
	PollIntervalSec int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "warehouse")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_ANALYSIS_TTL_SECONDS", 60)
		viper.SetDefault("LOW_STOCK_THRESHOLD", 10)
		viper.SetDefault("APPEND_RETRIES", 3)
		viper.SetDefault("ABC_CLASS_A_THRESHOLD", 80.0)
		viper.SetDefault("ABC_CLASS_B_THRESHOLD", 95.0)
		viper.SetDefault("XYZ_STABLE_MAX", 10.0)
		viper.SetDefault("XYZ_VARIABLE_MAX", 25.0)
		viper.SetDefault("XYZ_BUCKET_HOURS", 24)
		viper.SetDefault("FORECAST_LOOKBACK_DAYS", 90)
		viper.SetDefault("INGEST_ENDPOINT", "")
		viper.SetDefault("INGEST_ACCESS_KEY", "")
		viper.SetDefault("INGEST_SECRET_KEY", "")
		viper.SetDefault("INGEST_BUCKET", "")
		viper.SetDefault("INGEST_REGION", "")
		viper.SetDefault("INGEST_USE_SSL", true)
		viper.SetDefault("INGEST_PREFIX", "movements/")
		viper.SetDefault("INGEST_DOWNLOAD_DIR", "./data/ingest")
		viper.SetDefault("INGEST_POLL_INTERVAL_SECONDS", 60)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				AnalysisTTLSeconds: viper.GetInt("CACHE_ANALYSIS_TTL_SECONDS"),
			},
			Analytics: AnalyticsConfig{
				LowStockThreshold:    viper.GetInt("LOW_STOCK_THRESHOLD"),
				AppendRetries:        viper.GetInt("APPEND_RETRIES"),
				AbcClassAThreshold:   viper.GetFloat64("ABC_CLASS_A_THRESHOLD"),
				AbcClassBThreshold:   viper.GetFloat64("ABC_CLASS_B_THRESHOLD"),
				XyzStableMax:         viper.GetFloat64("XYZ_STABLE_MAX"),
				XyzVariableMax:       viper.GetFloat64("XYZ_VARIABLE_MAX"),
				XyzBucketHours:       viper.GetInt("XYZ_BUCKET_HOURS"),
				ForecastLookbackDays: viper.GetInt("FORECAST_LOOKBACK_DAYS"),
			},
			Ingest: IngestConfig{
				Endpoint:        viper.GetString("INGEST_ENDPOINT"),
				AccessKey:       viper.GetString("INGEST_ACCESS_KEY"),
				SecretKey:       viper.GetString("INGEST_SECRET_KEY"),
				Bucket:          viper.GetString("INGEST_BUCKET"),
				Region:          viper.GetString("INGEST_REGION"),
				UseSSL:          viper.GetBool("INGEST_USE_SSL"),
				Prefix:          viper.GetString("INGEST_PREFIX"),
				DownloadDir:     viper.GetString("INGEST_DOWNLOAD_DIR"),
				PollIntervalSec: viper.GetInt("INGEST_POLL_INTERVAL_SECONDS"),
			},
		}
	})

	return instance
}
