// Package config はプロセス起動時に一度だけ読み込まれる設定を提供します。
// 読み込み後のConfigは不変として扱い、必要なコンポーネントへ明示的に渡します。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultEnvFile は起動時に読み込みを試みる.envファイルのパスです。
const DefaultEnvFile = ".env"

// supportedAlgorithms はトークン署名に使用できるHMACアルゴリズムです。
var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// Config はアプリケーション全体の設定を表します。
type Config struct {
	// SecretKey はトークン署名用の共有シークレットです。
	SecretKey string `env:"SECRET_KEY,notEmpty"`
	// Algorithm はトークン署名アルゴリズムです（HS256/HS384/HS512）。
	Algorithm string `env:"ALGORITHM" envDefault:"HS256"`
	// TokenTTLMinutes はアクセストークンの有効期間（分）です。
	TokenTTLMinutes int `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	// BcryptCost はパスワードハッシュのコストです。
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// DatabaseURL はpostgres://またはsqlite://で始まる接続先です。
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"sqlite://./todo_app.db"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"60s"`
	RunMigrations    bool          `env:"RUN_MIGRATIONS" envDefault:"true"`

	// RedisAddr が空の場合、キャッシュは無効になります。
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	HTTPAddr           string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	GinMode            string   `env:"GIN_MODE" envDefault:"debug"`
}

// TokenTTL はアクセストークンの有効期間をDurationで返します。
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// CacheEnabled はRedisキャッシュが設定されているかを返します。
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Validate は環境変数の型変換だけでは検出できない設定値の誤りを検証します。
func (c Config) Validate() error {
	if _, ok := supportedAlgorithms[c.Algorithm]; !ok {
		return fmt.Errorf("unsupported token algorithm %q", c.Algorithm)
	}
	if c.TokenTTLMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return nil
}

// Load は.envファイル（存在する場合）と環境変数から設定を読み込み、検証します。
// .envファイルが存在しない場合はシステムの環境変数のみを使用します。
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Info("env file not found; using system environment variables", "file", f)
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
