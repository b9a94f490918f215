// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"todo_backend/internal/feature/tasks/domain/entity"
	"todo_backend/internal/feature/tasks/usecase"
)

var _ usecase.TaskRepository = (*CachingTaskRepository)(nil)

// CachingTaskRepository decorates a TaskRepository with a Redis cache for list queries.
// Every successful write by an owner invalidates that owner's cached pages.
type CachingTaskRepository struct {
	inner     usecase.TaskRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// taskPage is the cached form of a List result.
type taskPage struct {
	Tasks []entity.Task `json:"tasks"`
	Total int64         `json:"total"`
}

// NewCachingTaskRepository decorates a TaskRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "tasks".
func NewCachingTaskRepository(rdb *redis.Client, ttl time.Duration, inner usecase.TaskRepository, namespace string) *CachingTaskRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "tasks"
	}
	return &CachingTaskRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the task and invalidates the owner's cached pages.
func (c *CachingTaskRepository) Create(ctx context.Context, task *entity.Task) error {
	if err := c.inner.Create(ctx, task); err != nil {
		return err
	}
	c.invalidate(ctx, task.UserID)
	return nil
}

// List retrieves a page of tasks, checking cache first then falling back to the database.
func (c *CachingTaskRepository) List(ctx context.Context, ownerID uuid.UUID, q entity.ListQuery) ([]entity.Task, int64, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.List(ctx, ownerID, q)
	}

	key := c.cacheKey(ownerID, q)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var page taskPage
		if err := json.Unmarshal(b, &page); err == nil {
			return page.Tasks, page.Total, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	tasks, total, err := c.inner.List(ctx, ownerID, q)
	if err != nil {
		return nil, 0, err
	}

	// 3) Store in cache (best effort)
	// A write invalidating between step 2 and this Set leaves the older page cached until the TTL expires.
	if b, err := json.Marshal(taskPage{Tasks: tasks, Total: total}); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return tasks, total, nil
}

// FindByID is not cached.
func (c *CachingTaskRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Task, error) {
	return c.inner.FindByID(ctx, ownerID, id)
}

// Update applies the mutation and invalidates the owner's cached pages.
func (c *CachingTaskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, mutate func(*entity.Task) error) (*entity.Task, error) {
	task, err := c.inner.Update(ctx, ownerID, id, mutate)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, ownerID)
	return task, nil
}

// Delete removes the task and invalidates the owner's cached pages.
func (c *CachingTaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := c.inner.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	c.invalidate(ctx, ownerID)
	return nil
}

// invalidate deletes every cached page of the owner. Failures are logged and ignored.
func (c *CachingTaskRepository) invalidate(ctx context.Context, ownerID uuid.UUID) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.cacheKeyPrefix(ownerID)+"*"); err != nil {
		slog.Warn("failed to invalidate task cache", "error", err, "owner_id", ownerID)
	}
}

// cacheKey generates a cache key for a specific query.
func (c *CachingTaskRepository) cacheKey(ownerID uuid.UUID, q entity.ListQuery) string {
	status := q.Status
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("%s%s:%d:%d", c.cacheKeyPrefix(ownerID), safe(status), q.Offset, q.Limit)
}

// cacheKeyPrefix generates a prefix for invalidating an owner's cache entries.
func (c *CachingTaskRepository) cacheKeyPrefix(ownerID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:", c.namespace, ownerID)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingTaskRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
