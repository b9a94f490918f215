package entity

import (
	"time"

	"github.com/google/uuid"
)

// Task status values derived from the completion flag.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task represents a todo item owned by exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Status returns the task status as exposed to clients.
func (t *Task) Status() string {
	if t.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// Field holds a partial-update value and whether it was provided.
// Null is true when the field was explicitly set to null.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a Field set to v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Null returns a Field explicitly set to null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// TaskPatch lists the fields to change in a partial update.
// Status, when set, takes precedence over Completed.
type TaskPatch struct {
	Title       Field[string]
	Description Field[string]
	Completed   Field[bool]
	Status      Field[string]
}

// ListQuery selects a page of an owner's tasks.
// Status is empty for no filter.
type ListQuery struct {
	Offset int
	Limit  int
	Status string
}
