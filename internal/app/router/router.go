package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "todo_backend/internal/feature/auth/transport/handler"
	taskshandler "todo_backend/internal/feature/tasks/transport/handler"
	healthhandler "todo_backend/internal/platform/http/handler"
	jwtmw "todo_backend/internal/platform/jwt"
)

// Handlers はルーターに登録するハンドラーの集まりです。
type Handlers struct {
	Auth   *authhandler.AuthHandler
	Tasks  *taskshandler.TasksHandler
	Health *healthhandler.HealthHandler
}

// corsConfig は許可オリジンの一覧からCORS設定を組み立てます。"*" を含む場合は全オリジンを許可します。
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "WWW-Authenticate"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}

func NewRouter(h Handlers, resolver jwtmw.PrincipalResolver, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(allowedOrigins)))

	// 認証不要
	r.GET("/", healthhandler.Welcome)
	// 導通確認用
	for _, path := range []string{"/health", "/healthz"} {
		r.GET(path, h.Health.Health)
		r.HEAD(path, h.Health.Health)
		r.OPTIONS(path, h.Health.Health)
	}

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	// 新規ユーザー登録
	authGroup.POST("/register", h.Auth.Register)
	// ログイン（JWT 発行）
	authGroup.POST("/login", h.Auth.Login)
	// ログイン中のユーザー情報
	authGroup.GET("/me", jwtmw.AuthRequired(resolver), h.Auth.Me)

	// 認証必須のルート
	// → リクエストヘッダーに Bearer トークンが必要になる
	tasks := apiGroup.Group("/tasks")
	tasks.Use(jwtmw.AuthRequired(resolver))
	{
		tasks.GET("", h.Tasks.List)
		tasks.POST("", h.Tasks.Create)
		tasks.GET("/:id", h.Tasks.Get)
		tasks.PUT("/:id", h.Tasks.Update)
		tasks.DELETE("/:id", h.Tasks.Delete)
		tasks.PATCH("/:id/toggle", h.Tasks.Toggle)
	}

	return r
}
