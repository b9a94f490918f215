// Package handler はtasksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todo_backend/internal/api"
	"todo_backend/internal/feature/tasks/domain/entity"
	jwtmw "todo_backend/internal/platform/jwt"
)

// TasksUsecase はタスク操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type TasksUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, title string, description *string) (*entity.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, q entity.ListQuery) ([]entity.Task, int64, error)
	Get(ctx context.Context, ownerID uuid.UUID, id string) (*entity.Task, error)
	Update(ctx context.Context, ownerID uuid.UUID, id string, patch entity.TaskPatch) (*entity.Task, error)
	Toggle(ctx context.Context, ownerID uuid.UUID, id string) (*entity.Task, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id string) error
}

// TasksHandler はタスク操作のHTTPリクエストを処理します。
// すべてのエンドポイントはjwtmw.AuthRequiredの後段で使用します。
type TasksHandler struct {
	tasks TasksUsecase
}

// NewTasksHandler はTasksHandlerの新しいインスタンスを生成します。
func NewTasksHandler(tasks TasksUsecase) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// NewTaskResponse はタスクエンティティをレスポンス形式に変換します。
func NewTaskResponse(t *entity.Task) api.TaskResponse {
	return api.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status(),
		Completed:   t.Completed,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func optionalField[T any](o api.Optional[T]) entity.Field[T] {
	return entity.Field[T]{Value: o.Value, Set: o.Set, Null: o.Null}
}

// principal は認証済みユーザーのIDを返します。未認証の場合は401を書き込みfalseを返します。
func principal(c *gin.Context) (uuid.UUID, bool) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: api.Unauthorized})
		return uuid.Nil, false
	}
	return user.ID, true
}

// respondError はエラー種別に応じたステータスでエラーレスポンスを返します。
func respondError(c *gin.Context, op string, err error) {
	status := api.StatusCode(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(op+" rejected", "error", err, "remote_addr", c.ClientIP())
	}
	c.JSON(status, api.NewErrorResponse(err))
}

// Create はタスク作成APIエンドポイントを処理します。成功時は201を返却します。
func (h *TasksHandler) Create(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}
	var req api.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create task validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), owner, req.Title, req.Description)
	if err != nil {
		respondError(c, "create task", err)
		return
	}
	c.JSON(http.StatusCreated, NewTaskResponse(task))
}

// List はタスク一覧APIエンドポイントを処理します。
// クエリパラメータ: skip, limit, status_filter (pending|completed)
func (h *TasksHandler) List(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}
	var q api.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		slog.Warn("list tasks validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query parameters"})
		return
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), owner, entity.ListQuery{
		Offset: q.Skip,
		Limit:  q.Limit,
		Status: q.StatusFilter,
	})
	if err != nil {
		respondError(c, "list tasks", err)
		return
	}

	res := api.TaskListResponse{Tasks: make([]api.TaskResponse, 0, len(tasks)), Total: total}
	for i := range tasks {
		res.Tasks = append(res.Tasks, NewTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, res)
}

// Get はタスク取得APIエンドポイントを処理します。
// 他ユーザーのタスクは存在しないタスクと同じく404を返却します。
func (h *TasksHandler) Get(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, "get task", err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(task))
}

// Update はタスクの部分更新APIエンドポイントを処理します。
// リクエストに含まれるフィールドのみを更新します。
func (h *TasksHandler) Update(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}
	var req api.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update task validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), owner, c.Param("id"), entity.TaskPatch{
		Title:       optionalField(req.Title),
		Description: optionalField(req.Description),
		Completed:   optionalField(req.Completed),
		Status:      optionalField(req.Status),
	})
	if err != nil {
		respondError(c, "update task", err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(task))
}

// Toggle はタスクの完了状態を反転します。
func (h *TasksHandler) Toggle(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}
	task, err := h.tasks.Toggle(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, "toggle task", err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(task))
}

// Delete はタスク削除APIエンドポイントを処理します。
func (h *TasksHandler) Delete(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), owner, c.Param("id")); err != nil {
		respondError(c, "delete task", err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Task deleted successfully"})
}
