// Package db はGORMによるデータベース接続とマイグレーションを提供します。
// DATABASE_URLのスキームでPostgreSQL（pgx）とSQLiteを切り替えます。
package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authadapters "todo_backend/internal/feature/auth/adapters"
	taskadapters "todo_backend/internal/feature/tasks/adapters"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// retryInterval は接続失敗時の再試行間隔です。
const retryInterval = 3 * time.Second

// slowQueryThreshold を超えたクエリは警告として記録されます。
const slowQueryThreshold = 200 * time.Millisecond

// Config はデータベース接続の設定です。
type Config struct {
	URL            string
	ConnectTimeout time.Duration
	RunMigrations  bool
	// LogWriter はSQLログの出力先です。nilの場合は標準出力に書き込みます。
	LogWriter io.Writer
}

// Opener はDSNからgorm.DBを開く関数です。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はDATABASE_URLからドライバー名とDSNを決定します。
// postgres:// と postgresql:// はそのままpgxに渡し、sqlite:// はスキームを除いたパスを使います。
func BuildDSN(url string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return "", "", errors.New("sqlite url has no path")
		}
		return DriverSQLite, path, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q", schemeOf(url))
	}
}

// schemeOf はエラーメッセージ用にURLのスキームのみを返します。認証情報を含めないためです。
func schemeOf(url string) string {
	scheme, _, ok := strings.Cut(url, "://")
	if !ok {
		return ""
	}
	return scheme
}

// newLogger はバインド値を含めずにSQLを記録するロガーを生成します。
// パスワードハッシュやログイン識別子がログに残らないよう、プレースホルダーのまま出力します。
// 見つからないレコードは通常の結果として扱い、記録しません。
func newLogger(w io.Writer) logger.Interface {
	if w == nil {
		w = os.Stdout
	}
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}

// openerFor はドライバーに対応するOpenerを返します。
func openerFor(driver string, w io.Writer) Opener {
	gcfg := &gorm.Config{Logger: newLogger(w)}
	switch driver {
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), gcfg) }
	default:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), gcfg) }
	}
}

// ConnectWithRetry はtimeoutに達するまでretryInterval間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定に従ってデータベースに接続し、必要であればマイグレーションを実行します。
func Open(ctx context.Context, cfg Config) (*gorm.DB, error) {
	driver, dsn, err := BuildDSN(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(dsn, cfg.ConnectTimeout, openerFor(driver, cfg.LogWriter))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if driver == DriverSQLite {
		// SQLiteは書き込みを直列化するため接続を1本にする
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	slog.Info("database connected", "driver", driver)

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate はusersとtasksのテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authadapters.UserModel{},
		&taskadapters.TaskModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
