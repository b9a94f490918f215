// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	taskadapters "todo_backend/internal/feature/tasks/adapters"
	"todo_backend/internal/feature/tasks/usecase"
	"todo_backend/internal/platform/cache"
)

// NewTaskRepository creates a TaskRepository implementation.
// If Redis is available, the GORM repository is wrapped with a list cache.
// Otherwise, it returns the GORM repository as is.
func NewTaskRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.TaskRepository {
	repo := taskadapters.NewTaskGorm(db)
	if rdb != nil {
		return cache.NewCachingTaskRepository(rdb, ttl, repo, "tasks")
	}
	return repo
}
