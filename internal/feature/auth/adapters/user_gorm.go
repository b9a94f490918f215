// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// userGorm はUserRepositoryインターフェースのGORM実装です。
// PostgreSQLとSQLiteの両方で動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 一意制約違反は違反した列に応じてusecase.ErrEmailAlreadyExistsまたはusecase.ErrUsernameTakenに変換します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user must not be nil")
	}
	m := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if mapped := classifyUniqueViolation(err); mapped != nil {
			return mapped
		}
		return err
	}
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

// classifyUniqueViolation はドライバーのエラーから違反した一意制約を判定します。
// 一意制約違反でない場合や、emailとusername以外の制約に違反した場合はnilを返します。
func classifyUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case emailIndex:
			return usecase.ErrEmailAlreadyExists
		case usernameIndex:
			return usecase.ErrUsernameTaken
		default:
			return nil
		}
	}

	// SQLiteは "UNIQUE constraint failed: users.username" の形式で列名を返す
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "users.email"):
			return usecase.ErrEmailAlreadyExists
		case strings.Contains(msg, "users.username"):
			return usecase.ErrUsernameTaken
		default:
			return nil
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return usecase.ErrEmailAlreadyExists
	}
	return nil
}

// first は条件に一致する最初のユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) first(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Scopes(scope).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("email = ?", email)
	})
}

// FindByUsername はユーザー名でユーザーを取得します。
func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("username = ?", username)
	})
}

// FindByUsernameOrEmail はユーザー名またはメールアドレスでユーザーを取得します。
// 両方に一致するユーザーが別々に存在する場合はメールアドレスの一致を優先します。
func (r *userGorm) FindByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error) {
	return r.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("username = ? OR email = ?", identifier, identifier).
			Order(clause.Expr{SQL: "CASE WHEN email = ? THEN 0 ELSE 1 END", Vars: []any{identifier}})
	})
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	})
}
