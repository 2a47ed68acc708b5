package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Ingestion IngestionConfig
	Admin     AdminConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// AllowOrigins: список origin для CORS
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath: каталог с SQL-миграциями (по умолчанию "migrations")
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт).
	Addrs []string `mapstructure:"addrs"`

	// Addr: Адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// Драйверы хранилища извлеченных ресурсов
const (
	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"
)

// StorageConfig содержит настройки хранилища ресурсов (изображений из документов)
type StorageConfig struct {
	Driver string
	// LocalDir: каталог на диске для драйвера local
	LocalDir string `mapstructure:"local_dir"`
	// PublicPrefix: URL-префикс, под которым раздается LocalDir
	PublicPrefix string `mapstructure:"public_prefix"`
	GCSBucket    string `mapstructure:"gcs_bucket"`
	// GCSPublicBase: базовый URL (CDN) для ссылок на объекты GCS
	GCSPublicBase      string `mapstructure:"gcs_public_base"`
	GCSCredentialsFile string `mapstructure:"gcs_credentials_file"`
}

// IngestionConfig содержит ограничения конвейера загрузки документов
type IngestionConfig struct {
	TimeoutSec     int   `mapstructure:"timeout_sec"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// AdminConfig содержит учетные данные администратора
type AdminConfig struct {
	Username string
	// PasswordHash: bcrypt-хеш пароля администратора
	PasswordHash  string `mapstructure:"password_hash"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// CacheConfig содержит настройки кеша чтения
type CacheConfig struct {
	Enabled    bool
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// RateLimitConfig содержит лимиты на отправку ответов
type RateLimitConfig struct {
	SubmitPerMinute int `mapstructure:"submit_per_minute"`
}

// LogConfig содержит настройки логгера
type LogConfig struct {
	Mode string
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Timeout возвращает таймаут конвейера как time.Duration
func (c IngestionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// TTL возвращает время жизни записей кеша
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 30)
	vip.SetDefault("server.write_timeout", 60)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("storage.driver", StorageDriverLocal)
	vip.SetDefault("storage.local_dir", "public/uploads")
	vip.SetDefault("storage.public_prefix", "/uploads")
	vip.SetDefault("ingestion.timeout_sec", 30)
	vip.SetDefault("ingestion.max_upload_bytes", 20<<20)
	vip.SetDefault("admin.token_ttl_hours", 12)
	vip.SetDefault("cache.enabled", true)
	vip.SetDefault("cache.ttl_seconds", 300)
	vip.SetDefault("rate_limit.submit_per_minute", 30)
	vip.SetDefault("log.mode", "development")

	// Привязка для секции Server
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.allow_origins", "SERVER_ALLOW_ORIGINS")

	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции Storage
	vip.BindEnv("storage.driver", "STORAGE_DRIVER")
	vip.BindEnv("storage.local_dir", "STORAGE_LOCAL_DIR")
	vip.BindEnv("storage.public_prefix", "STORAGE_PUBLIC_PREFIX")
	vip.BindEnv("storage.gcs_bucket", "STORAGE_GCS_BUCKET")
	vip.BindEnv("storage.gcs_public_base", "STORAGE_GCS_PUBLIC_BASE")
	vip.BindEnv("storage.gcs_credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")

	// Привязка для секции Ingestion
	vip.BindEnv("ingestion.timeout_sec", "INGESTION_TIMEOUT_SEC")
	vip.BindEnv("ingestion.max_upload_bytes", "INGESTION_MAX_UPLOAD_BYTES")

	// Привязка для секции Admin
	vip.BindEnv("admin.username", "ADMIN_USERNAME")
	vip.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")
	vip.BindEnv("admin.jwt_secret", "ADMIN_JWT_SECRET")
	vip.BindEnv("admin.token_ttl_hours", "ADMIN_TOKEN_TTL_HOURS")

	// Привязка для Cache, RateLimit, Log
	vip.BindEnv("cache.enabled", "CACHE_ENABLED")
	vip.BindEnv("cache.ttl_seconds", "CACHE_TTL_SECONDS")
	vip.BindEnv("rate_limit.submit_per_minute", "RATE_LIMIT_SUBMIT_PER_MINUTE")
	vip.BindEnv("log.mode", "LOG_MODE")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файл не обязателен: все значения можно задать через окружение
		if err := vip.ReadInConfig(); err != nil {
			log.Printf("config file %q not loaded, using env/defaults: %v", configPath, err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Списки из окружения приходят одной строкой через запятую
	cfg.Redis.Addrs = splitList(strings.Join(cfg.Redis.Addrs, ","))
	cfg.Server.AllowOrigins = splitList(strings.Join(cfg.Server.AllowOrigins, ","))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate проверяет обязательные параметры
func (c *Config) validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Admin.Username == "" || c.Admin.PasswordHash == "" {
		return fmt.Errorf("admin credentials are required (check ADMIN_USERNAME, ADMIN_PASSWORD_HASH env vars)")
	}
	if c.Admin.JWTSecret == "" {
		return fmt.Errorf("admin JWT secret is required (check ADMIN_JWT_SECRET env var)")
	}
	switch c.Storage.Driver {
	case StorageDriverLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for the local storage driver")
		}
	case StorageDriverGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket is required for the gcs storage driver (check STORAGE_GCS_BUCKET)")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Storage.Driver)
	}
	if c.Ingestion.TimeoutSec <= 0 {
		return fmt.Errorf("ingestion.timeout_sec must be positive")
	}
	if c.Ingestion.MaxUploadBytes <= 0 {
		return fmt.Errorf("ingestion.max_upload_bytes must be positive")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
