package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todo_backend/internal/api"
	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/shared/apperror"
)

// ContextUser は認証済みユーザーを格納するgin.Contextのキーです。
const ContextUser = "currentUser"

// PrincipalResolver はトークンから認証済みユーザーを解決します。
type PrincipalResolver interface {
	ResolveFromToken(ctx context.Context, token string) (*entity.User, error)
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出します。
// スキーム名は大文字小文字を区別しません。
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: api.Unauthorized})
}

// AuthRequired returns a Gin middleware function that resolves the bearer token
// into a user and restricts access to authenticated users only.
func AuthRequired(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		user, err := resolver.ResolveFromToken(c.Request.Context(), token)
		if err != nil {
			if apperror.Kind(err) == apperror.ErrUnauthenticated {
				abortUnauthorized(c)
				return
			}
			slog.Error("failed to resolve user from token", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse(err))
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser はAuthRequiredが設定した認証済みユーザーを返します。
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}
