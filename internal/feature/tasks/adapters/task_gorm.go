// Package adapters はtasksフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo_backend/internal/feature/tasks/domain/entity"
	"todo_backend/internal/feature/tasks/usecase"
)

// taskGorm はTaskRepositoryインターフェースのGORM実装です。
type taskGorm struct {
	db *gorm.DB
}

// taskGormがTaskRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.TaskRepository = (*taskGorm)(nil)

// NewTaskGorm は指定されたgorm.DB接続でtaskGormの新しいインスタンスを生成します。
func NewTaskGorm(db *gorm.DB) *taskGorm {
	return &taskGorm{db: db}
}

// ownedBy はクエリを所有者のタスクに限定します。
// タスクへのすべてのアクセスはこのスコープを通します。
func ownedBy(ownerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", ownerID)
	}
}

// ownedTask はクエリを所有者の特定のタスクに限定します。
func ownedTask(ownerID, id uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND user_id = ?", id, ownerID)
	}
}

// withStatus はstatusが指定されている場合に完了状態で絞り込みます。
func withStatus(status string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case entity.StatusPending:
			return db.Where("completed = ?", false)
		case entity.StatusCompleted:
			return db.Where("completed = ?", true)
		default:
			return db
		}
	}
}

// Create はタスクをデータベースに追加します。
func (r *taskGorm) Create(ctx context.Context, t *entity.Task) error {
	m := TaskModelFromEntity(t)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	t.CreatedAt = m.CreatedAt
	t.UpdatedAt = m.UpdatedAt
	return nil
}

// List は所有者のタスクを作成日時の新しい順に返します。総件数はページングの前に数えます。
func (r *taskGorm) List(ctx context.Context, ownerID uuid.UUID, q entity.ListQuery) ([]entity.Task, int64, error) {
	base := r.db.WithContext(ctx).Model(&TaskModel{}).Scopes(ownedBy(ownerID), withStatus(q.Status))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []TaskModel
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC").Order("id").
		Offset(q.Offset).Limit(q.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	tasks := make([]entity.Task, 0, len(models))
	for i := range models {
		tasks = append(tasks, *models[i].ToEntity())
	}
	return tasks, total, nil
}

// FindByID は所有者のタスクを取得します。
// 他ユーザーのタスクは存在しないものとしてusecase.ErrTaskNotFoundを返します。
func (r *taskGorm) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Task, error) {
	var m TaskModel
	if err := r.db.WithContext(ctx).Scopes(ownedTask(ownerID, id)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Update は所有者のタスクを行ロック付きで読み込み、mutateを適用して保存します。
// SQLiteは行ロックを持たないため、書き込みトランザクションの直列化に任せます。
func (r *taskGorm) Update(ctx context.Context, ownerID, id uuid.UUID, mutate func(*entity.Task) error) (*entity.Task, error) {
	var updated *entity.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Scopes(ownedTask(ownerID, id))
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var m TaskModel
		if err := q.First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrTaskNotFound
			}
			return err
		}

		t := m.ToEntity()
		if err := mutate(t); err != nil {
			return err
		}

		next := TaskModelFromEntity(t)
		// 所有者とIDは変更させない
		next.ID, next.UserID, next.CreatedAt = m.ID, m.UserID, m.CreatedAt
		// Saveは0件更新時にINSERTへフォールバックするため、所有者スコープ付きのUpdatesで書き込む
		res := tx.Model(next).Scopes(ownedTask(ownerID, id)).Select("*").Updates(next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrTaskNotFound
		}

		var stored TaskModel
		if err := tx.Scopes(ownedTask(ownerID, id)).First(&stored).Error; err != nil {
			return err
		}
		updated = stored.ToEntity()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は所有者のタスクを削除します。該当行がない場合はusecase.ErrTaskNotFoundを返します。
func (r *taskGorm) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Scopes(ownedTask(ownerID, id)).Delete(&TaskModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}
