// Package usecase はタスク操作のビジネスロジックを提供します。
// すべての操作は要求者のIDで絞り込まれ、他ユーザーのタスクには一切触れません。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"todo_backend/internal/feature/tasks/domain/entity"
)

const (
	// DefaultListLimit はlimit未指定時の1ページあたりの件数です。
	DefaultListLimit = 100
	// MaxListLimit は1ページあたりの最大件数です。
	MaxListLimit = 100
	// maxTitleLength はタイトルの最大文字数です。
	maxTitleLength = 255
)

// TaskRepository はタスクの永続化層を抽象化します。
// すべてのメソッドはownerIDで絞り込み、一致しない場合はErrTaskNotFoundを返します。
type TaskRepository interface {
	// Create は新しいタスクを保存します。
	Create(ctx context.Context, task *entity.Task) error
	// List はownerIDのタスクのうち、条件に一致するページと総件数を返します。
	List(ctx context.Context, ownerID uuid.UUID, q entity.ListQuery) ([]entity.Task, int64, error)
	// FindByID はownerIDが所有するタスクを取得します。
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Task, error)
	// Update はownerIDが所有するタスクを読み込み、mutateを適用して保存します。
	// 読み込みから保存までは1つのトランザクション内で行われます。
	Update(ctx context.Context, ownerID, id uuid.UUID, mutate func(*entity.Task) error) (*entity.Task, error)
	// Delete はownerIDが所有するタスクを削除します。
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// tasksUsecase はタスク操作を実装します。
type tasksUsecase struct {
	repo TaskRepository
}

// NewTasksUsecase はtasksUsecaseの新しいインスタンスを生成します。
func NewTasksUsecase(repo TaskRepository) *tasksUsecase {
	return &tasksUsecase{repo: repo}
}

// parseTaskID はパスパラメータのタスクIDを解釈します。
func parseTaskID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrInvalidTaskID
	}
	return parsed, nil
}

// normalizeTitle は前後の空白を除いたタイトルを検証して返します。
func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// completedFromStatus はstatus文字列を完了フラグに変換します。
func completedFromStatus(status string) (bool, error) {
	switch status {
	case entity.StatusPending:
		return false, nil
	case entity.StatusCompleted:
		return true, nil
	default:
		return false, ErrInvalidStatus
	}
}

// Create は要求者を所有者とする未完了のタスクを作成します。
func (u *tasksUsecase) Create(ctx context.Context, ownerID uuid.UUID, title string, description *string) (*entity.Task, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	task := &entity.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Completed:   false,
		UserID:      ownerID,
	}
	if err := u.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// List は要求者のタスクをページ単位で返します。
// limitが0の場合はDefaultListLimit、MaxListLimitを超える場合はMaxListLimitを使用します。
func (u *tasksUsecase) List(ctx context.Context, ownerID uuid.UUID, q entity.ListQuery) ([]entity.Task, int64, error) {
	if q.Offset < 0 || q.Limit < 0 {
		return nil, 0, ErrInvalidPagination
	}
	if q.Limit == 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if q.Status != "" {
		if _, err := completedFromStatus(q.Status); err != nil {
			return nil, 0, err
		}
	}

	tasks, total, err := u.repo.List(ctx, ownerID, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Get は要求者が所有するタスクを返します。
func (u *tasksUsecase) Get(ctx context.Context, ownerID uuid.UUID, id string) (*entity.Task, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	return u.repo.FindByID(ctx, ownerID, taskID)
}

// Update は指定されたフィールドのみを更新します。
// 入力の検証はストレージへのアクセス前に行います。
func (u *tasksUsecase) Update(ctx context.Context, ownerID uuid.UUID, id string, patch entity.TaskPatch) (*entity.Task, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}

	var title string
	if patch.Title.Set {
		if patch.Title.Null {
			return nil, ErrTitleRequired
		}
		if title, err = normalizeTitle(patch.Title.Value); err != nil {
			return nil, err
		}
	}

	var completed *bool
	switch {
	case patch.Status.Set && !patch.Status.Null:
		c, err := completedFromStatus(patch.Status.Value)
		if err != nil {
			return nil, err
		}
		completed = &c
	case patch.Status.Set:
		return nil, ErrInvalidStatus
	case patch.Completed.Set && !patch.Completed.Null:
		completed = &patch.Completed.Value
	}

	return u.repo.Update(ctx, ownerID, taskID, func(t *entity.Task) error {
		if patch.Title.Set {
			t.Title = title
		}
		if patch.Description.Set {
			if patch.Description.Null {
				t.Description = nil
			} else {
				d := patch.Description.Value
				t.Description = &d
			}
		}
		if completed != nil {
			t.Completed = *completed
		}
		return nil
	})
}

// Toggle はタスクの完了状態を反転します。
func (u *tasksUsecase) Toggle(ctx context.Context, ownerID uuid.UUID, id string) (*entity.Task, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	return u.repo.Update(ctx, ownerID, taskID, func(t *entity.Task) error {
		t.Completed = !t.Completed
		return nil
	})
}

// Delete は要求者が所有するタスクを削除します。
func (u *tasksUsecase) Delete(ctx context.Context, ownerID uuid.UUID, id string) error {
	taskID, err := parseTaskID(id)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, ownerID, taskID)
}
