package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers understood by the key-value persistence layer.
const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Backup archive drivers.
const (
	BackupDriverFilesystem = "fs"
	BackupDriverS3         = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Library  LibraryConfig
	Payroll  PayrollConfig
	Backups  BackupConfig
	Metrics  MetricsConfig
}

// StoreConfig selects the backend holding the namespaced JSON collections.
type StoreConfig struct {
	Driver     string
	SQLitePath string
	Seed       bool
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LibraryConfig carries the seat capacity and plan fees of the study library.
type LibraryConfig struct {
	TotalSeats  int
	FullTimeFee float64
	HalfTimeFee float64
}

// PayrollConfig carries payroll defaults.
type PayrollConfig struct {
	Currency string
}

// BackupConfig controls where export snapshots are archived.
type BackupConfig struct {
	Driver          string
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Async           bool
	S3              S3Config
}

// S3Config addresses an S3 compatible bucket (AWS or MinIO).
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Driver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		SQLitePath: v.GetString("STORE_SQLITE_PATH"),
		Seed:       v.GetBool("STORE_SEED"),
	}

	cfg.Database = DatabaseConfig{
		Driver:       v.GetString("DB_DRIVER"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	totalSeats := v.GetInt("LIBRARY_TOTAL_SEATS")
	if totalSeats <= 0 {
		totalSeats = 80
	}
	cfg.Library = LibraryConfig{
		TotalSeats:  totalSeats,
		FullTimeFee: v.GetFloat64("LIBRARY_FULL_TIME_FEE"),
		HalfTimeFee: v.GetFloat64("LIBRARY_HALF_TIME_FEE"),
	}

	cfg.Payroll = PayrollConfig{
		Currency: v.GetString("PAYROLL_CURRENCY"),
	}

	cfg.Backups = BackupConfig{
		Driver:          strings.ToLower(v.GetString("BACKUP_DRIVER")),
		StorageDir:      v.GetString("BACKUP_STORAGE_DIR"),
		SignedURLSecret: v.GetString("BACKUP_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("BACKUP_SIGNED_URL_TTL"), 30*time.Minute),
		Async:           v.GetBool("BACKUP_ASYNC"),
		S3: S3Config{
			Bucket:          v.GetString("BACKUP_S3_BUCKET"),
			Region:          v.GetString("BACKUP_S3_REGION"),
			Endpoint:        v.GetString("BACKUP_S3_ENDPOINT"),
			AccessKeyID:     v.GetString("BACKUP_S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("BACKUP_S3_SECRET_ACCESS_KEY"),
			PathStyle:       v.GetBool("BACKUP_S3_PATH_STYLE"),
		},
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreDriverSQLite)
	v.SetDefault("STORE_SQLITE_PATH", "./data/ledgerdesk.db")
	v.SetDefault("STORE_SEED", true)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ledgerdesk")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 4)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LIBRARY_TOTAL_SEATS", 80)
	v.SetDefault("LIBRARY_FULL_TIME_FEE", 800)
	v.SetDefault("LIBRARY_HALF_TIME_FEE", 500)
	v.SetDefault("PAYROLL_CURRENCY", "USD")

	v.SetDefault("BACKUP_DRIVER", BackupDriverFilesystem)
	v.SetDefault("BACKUP_STORAGE_DIR", "./backups")
	v.SetDefault("BACKUP_SIGNED_URL_SECRET", "dev_backup_secret")
	v.SetDefault("BACKUP_SIGNED_URL_TTL", "30m")
	v.SetDefault("BACKUP_ASYNC", false)
	v.SetDefault("BACKUP_S3_BUCKET", "")
	v.SetDefault("BACKUP_S3_REGION", "us-east-1")
	v.SetDefault("BACKUP_S3_ENDPOINT", "")
	v.SetDefault("BACKUP_S3_ACCESS_KEY_ID", "")
	v.SetDefault("BACKUP_S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("BACKUP_S3_PATH_STYLE", false)

	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
