package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// RegisterRequest は POST /api/auth/register のリクエストボディです。
// Emailの形式はopenapi_types.EmailのUnmarshalJSONで検証されます。
type RegisterRequest struct {
	Email     openapi_types.Email `json:"email" binding:"required"`
	Password  string              `json:"password" binding:"required"`
	FirstName *string             `json:"firstName"`
	LastName  *string             `json:"lastName"`
}

// LoginRequest は POST /api/auth/login のリクエストボディです。
// emailにはメールアドレスとユーザー名のどちらも指定できます。
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// Identifier はログインに使う識別子（ユーザー名またはメールアドレス）を返します。
func (r LoginRequest) Identifier() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// TokenResponse はログイン成功時のレスポンスボディです。
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// UserResponse はユーザー情報のレスポンスボディです。パスワードハッシュは含みません。
type UserResponse struct {
	ID        openapi_types.UUID `json:"id"`
	Email     string             `json:"email"`
	Username  string             `json:"username"`
	FirstName *string            `json:"firstName"`
	LastName  *string            `json:"lastName"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
