package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Email    EmailConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath: путь к папке с SQL-миграциями (по умолчанию "migrations")
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Для 'single' используется первый адрес.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
	Issuer        string `mapstructure:"issuer"`
}

// AuthConfig содержит настройки аутентификации и ограничения частоты запросов
type AuthConfig struct {
	MinPasswordLength int `mapstructure:"min_password_length"`
	LoginRateLimit    int `mapstructure:"login_rate_limit"`  // запросов в минуту на IP
	SubmitRateLimit   int `mapstructure:"submit_rate_limit"` // отправок в минуту на IP
}

// CacheConfig содержит настройки кеширования дашбордов
type CacheConfig struct {
	DashboardTTLSec int `mapstructure:"dashboard_ttl_sec"`
}

// EmailConfig содержит настройки уведомлений о результатах
type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readtimeout", 15)
	vip.SetDefault("server.writetimeout", 15)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.expirationHrs", 24)
	vip.SetDefault("jwt.issuer", "quizmaster-api")
	vip.SetDefault("auth.min_password_length", 8)
	vip.SetDefault("auth.login_rate_limit", 10)
	vip.SetDefault("auth.submit_rate_limit", 30)
	vip.SetDefault("cache.dashboard_ttl_sec", 60)

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	vip.BindEnv("auth.login_rate_limit", "AUTH_LOGIN_RATE_LIMIT")
	vip.BindEnv("auth.submit_rate_limit", "AUTH_SUBMIT_RATE_LIMIT")

	vip.BindEnv("cache.dashboard_ttl_sec", "CACHE_DASHBOARD_TTL_SEC")

	vip.BindEnv("email.enabled", "EMAIL_ENABLED")
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("JWT Secret Set: %t", cfg.JWT.Secret != "")
		log.Printf("Email Enabled: %t", cfg.Email.Enabled)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate проверяет обязательные параметры
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required in config (check JWT_SECRET env var)")
	}
	if len(c.JWT.Secret) < 32 && os.Getenv("GIN_MODE") == "release" {
		return fmt.Errorf("jwt secret must be at least 32 characters in release mode")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Email.Enabled && (c.Email.ResendAPIKey == "" || c.Email.From == "") {
		return fmt.Errorf("email is enabled but RESEND_API_KEY or EMAIL_FROM is not set")
	}
	return nil
}
