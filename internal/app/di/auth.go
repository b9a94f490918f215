package di

import (
	"fmt"

	"gorm.io/gorm"

	"todo_backend/internal/app/config"
	authadapters "todo_backend/internal/feature/auth/adapters"
	authhandler "todo_backend/internal/feature/auth/transport/handler"
	authusecase "todo_backend/internal/feature/auth/usecase"
	jwtmw "todo_backend/internal/platform/jwt"
	"todo_backend/internal/platform/password"
)

// AuthUsecase はハンドラーと認証ミドルウェアの両方が利用する認証Usecaseです。
type AuthUsecase interface {
	authhandler.AuthUsecase
	jwtmw.PrincipalResolver
}

// NewAuthUsecase は設定からトークンサービスとパスワードハッシャーを構築し、認証Usecaseを生成します。
func NewAuthUsecase(cfg config.Config, db *gorm.DB) (AuthUsecase, error) {
	tokens, err := jwtmw.NewTokenService(jwtmw.Config{
		Secret:    cfg.SecretKey,
		Algorithm: cfg.Algorithm,
		TTL:       cfg.TokenTTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	users := authadapters.NewUserGorm(db)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	return authusecase.NewAuthUsecase(users, hasher, tokens), nil
}
