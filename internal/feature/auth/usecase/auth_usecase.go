package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"todo_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// maxPasswordLength はbcryptが扱えるパスワードの最大バイト数です。
	maxPasswordLength = 72
	// maxRegisterAttempts はユーザー名の一意制約違反時に挿入を再試行する回数の上限です。
	maxRegisterAttempts = 10
	// TokenType はログインレスポンスで返すトークン種別です。
	TokenType = "bearer"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// メールアドレスが重複する場合はErrEmailAlreadyExists、ユーザー名が重複する場合はErrUsernameTakenを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail はメールアドレスに一致するユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername はユーザー名に一致するユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByUsernameOrEmail はユーザー名またはメールアドレスに一致するユーザーを取得します。
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error)

	// FindByID はIDに一致するユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// PasswordHasher は一方向のパスワードハッシュを抽象化します。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenService は署名付きアクセストークンの発行と検証を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenService interface {
	// GenerateToken は既定の有効期間でsubjectのトークンを発行し、有効期限を返します。
	GenerateToken(subject uuid.UUID) (string, time.Time, error)
	// Validate はトークンを検証し、subjectを返します。
	Validate(token string) (uuid.UUID, error)
	// TTL は既定の有効期間を返します。
	TTL() time.Duration
}

// RegisterInput はユーザー登録の入力です。
type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// Token はログイン成功時に発行されるアクセストークンです。
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenService

	// dummyHash はユーザーが存在しない場合にもハッシュ検証を行うためのハッシュです。
	dummyHash string
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher, tokens TokenService) *authUsecase {
	// ハッシュ生成に失敗した場合は空文字となり、検証は常に失敗する
	dummy, _ := hasher.Hash(uuid.NewString())
	return &authUsecase{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummy,
	}
}

// validateEmail はメールアドレスが単一のアドレスとして解釈できるかチェックします。
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
// メールアドレスの事前チェックは不要なハッシュ計算を避けるためのもので、
// 重複の最終判定はストレージの一意制約が行います。
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	_, err := u.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailAlreadyExists
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}

	base := usernameBase(in.Email)
	n := 0
	for attempt := 0; attempt < maxRegisterAttempts; attempt++ {
		username, idx, err := u.nextFreeUsername(ctx, base, n)
		if err != nil {
			return nil, err
		}
		user.Username = username

		err = u.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		// 同時登録に候補を取られたため、次の番号から探し直す
		n = idx + 1
	}
	return nil, ErrUsernameUnavailable
}

// Login はユーザー名またはメールアドレスとパスワードでユーザーを認証し、アクセストークンを返します。
// タイミング差を抑えるため、ユーザーが存在しない場合でもハッシュ検証を実行します。
func (u *authUsecase) Login(ctx context.Context, identifier, password string) (*Token, error) {
	user, err := u.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	passwordHash := u.dummyHash
	if user != nil {
		passwordHash = user.PasswordHash
	}
	verified := u.hasher.Verify(password, passwordHash)

	if user == nil || !verified {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := u.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &Token{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
		ExpiresIn:   u.tokens.TTL(),
	}, nil
}

// ResolveFromToken はトークンを検証し、対応するユーザーを返します。
// 署名不正・期限切れ・削除済みユーザーはすべてErrInvalidTokenになります。
func (u *authUsecase) ResolveFromToken(ctx context.Context, token string) (*entity.User, error) {
	subject, err := u.tokens.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := u.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
