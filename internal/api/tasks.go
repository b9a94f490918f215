package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// CreateTaskRequest は POST /api/tasks のリクエストボディです。
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTaskRequest は PUT /api/tasks/:id のリクエストボディです。
// 指定されたフィールドのみが更新されます。statusはcompletedの別名で、両方ある場合はstatusが優先されます。
type UpdateTaskRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Completed   Optional[bool]   `json:"completed"`
	Status      Optional[string] `json:"status"`
}

// ListTasksQuery は GET /api/tasks のクエリパラメータです。
type ListTasksQuery struct {
	Skip         int    `form:"skip" binding:"min=0"`
	Limit        int    `form:"limit" binding:"min=0"`
	StatusFilter string `form:"status_filter" binding:"omitempty,oneof=pending completed"`
}

// TaskResponse はタスクのレスポンスボディです。
type TaskResponse struct {
	ID          openapi_types.UUID `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      string             `json:"status"`
	Completed   bool               `json:"completed"`
	UserID      openapi_types.UUID `json:"userId"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// TaskListResponse はタスク一覧のレスポンスボディです。
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int64          `json:"total"`
}
