package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vortexkeep/internal/model"
)

// TaskRepository scopes every read and write by the owning user id. The
// `id = ? AND user_id = ?` predicate in Update and Delete is the ownership
// check; callers cannot reach another user's rows by guessing task ids.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(task *model.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByUserID(userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByIDAndUserID(taskID, userID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

// Update applies the non-nil patch fields and reports how many rows matched.
// Zero means the task does not exist or belongs to someone else; the two
// cases are indistinguishable on purpose.
func (r *TaskRepository) Update(taskID, userID uint, patch model.TaskPatch) (int64, error) {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if len(updates) == 0 {
		return 0, nil
	}

	result := r.db.Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("update task failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *TaskRepository) Delete(taskID, userID uint) (int64, error) {
	result := r.db.Where("id = ? AND user_id = ?", taskID, userID).Delete(&model.Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete task failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}
