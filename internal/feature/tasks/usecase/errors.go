package usecase

import "todo_backend/internal/shared/apperror"

var (
	// ErrTaskNotFound はタスクが存在しない、または要求者が所有していないことを表します。
	// 両者を区別しないことで、他ユーザーのタスクの存在を推測できないようにします。
	ErrTaskNotFound = apperror.New(apperror.ErrNotFound, "task not found")

	ErrInvalidTaskID     = apperror.New(apperror.ErrInvalidInput, "invalid task id format")
	ErrTitleRequired     = apperror.New(apperror.ErrInvalidInput, "title is required")
	ErrTitleTooLong      = apperror.New(apperror.ErrInvalidInput, "title must be at most 255 characters")
	ErrInvalidStatus     = apperror.New(apperror.ErrInvalidInput, "status must be pending or completed")
	ErrInvalidPagination = apperror.New(apperror.ErrInvalidInput, "skip and limit must not be negative")
)
