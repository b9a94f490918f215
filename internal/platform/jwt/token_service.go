package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL はTTL未指定時のアクセストークンの有効期間です。
const DefaultTTL = 30 * time.Minute

var (
	// ErrInvalidToken は署名不正・期限切れ・形式不正など、検証に失敗したトークンを表します。
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret は署名用シークレットが空の場合に返されます。
	ErrEmptySecret = errors.New("token secret must not be empty")
)

// signingMethods はサポートするHMAC署名アルゴリズムです。
var signingMethods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Config はTokenServiceの設定です。
type Config struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

// Option はTokenServiceの任意設定を変更します。
type Option func(*TokenService)

// WithClock は有効期限の計算と検証に使う時刻関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// TokenService はHMAC署名付きのアクセストークンを発行・検証します。
// 状態を持たないため、複数のgoroutineから同時に使用できます。
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService は設定を検証してTokenServiceを生成します。
func NewTokenService(cfg Config, opts ...Option) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := signingMethods[cfg.Algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	s := &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return s, nil
}

// TTL は既定の有効期間を返します。
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken は既定の有効期間でトークンを発行します。
func (s *TokenService) GenerateToken(subject uuid.UUID) (string, time.Time, error) {
	return s.Issue(subject, s.ttl)
}

// Issue はsubjectを持つトークンを発行し、有効期限とともに返します。
// ttlが0以下の場合は既定の有効期間を使用します。
func (s *TokenService) Issue(subject uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))

	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: expiresAt,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt.Time, nil
}

// Validate は署名・アルゴリズム・有効期限を検証し、subjectを返します。
// 失敗理由は区別せず、すべてErrInvalidTokenを返します。
func (s *TokenService) Validate(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return subject, nil
}
