package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"

	devJWTSecret = "dev_secret_change_me"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod（未設定はdev扱いにしない）

	StoreDriver string // memory/redis/postgres

	DatabaseURL      string // あれば最優先
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisURL      string // あれば最優先
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string // キーの接頭辞

	JWTSecret string        // デバイストークン署名シークレット
	TokenTTL  time.Duration // デバイストークンの有効期限

	CartPollInterval time.Duration // 表示面の再読込間隔
	CartWriteRetries int           // CAS競合時の再試行回数

	LogLevel string // debug/info/warn/error
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: os.Getenv("GO_ENV"),

		StoreDriver: getenv("STORE_DRIVER", StoreDriverMemory),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "storefront"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:   getenv("REDIS_PREFIX", "storefront:"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.PostgresPort, err = atoiDefault("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = atoiDefault("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.CartWriteRetries, err = atoiDefault("CART_WRITE_RETRIES", 16); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = durationDefault("TOKEN_TTL", 30*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CartPollInterval, err = durationDefault("CART_POLL_INTERVAL", time.Second); err != nil {
		return Config{}, err
	}

	//必須チェック
	switch cfg.StoreDriver {
	case StoreDriverMemory, StoreDriverRedis, StoreDriverPostgres:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be one of memory, redis, postgres")
	}
	//開発用シークレットは GO_ENV=dev を明示したときだけ
	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.CartWriteRetries < 1 {
		return Config{}, fmt.Errorf("CART_WRITE_RETRIES must be >= 1")
	}
	if cfg.CartPollInterval <= 0 {
		return Config{}, fmt.Errorf("CART_POLL_INTERVAL must be > 0")
	}

	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.GoEnv == "dev"
}

// ":8080" 形式
func (c Config) Addr() string {
	if c.Port != "" && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

// DATABASE_URL が無ければ POSTGRES_* から組み立てる
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
