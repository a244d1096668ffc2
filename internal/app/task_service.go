package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"vortexkeep/internal/model"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTitleRequired    = errors.New("task title is required")
	ErrNoFieldsToUpdate = errors.New("no fields provided for update")
)

type TaskStore interface {
	Create(task *model.Task) error
	ListByUserID(userID uint) ([]model.Task, error)
	GetByIDAndUserID(taskID, userID uint) (*model.Task, error)
	Update(taskID, userID uint, patch model.TaskPatch) (int64, error)
	Delete(taskID, userID uint) (int64, error)
}

type TaskEventPublisher interface {
	Publish(ctx context.Context, event model.TaskEvent) error
}

type TaskCache interface {
	GetTasks(ctx context.Context, userID uint) ([]model.Task, bool, error)
	SetTasks(ctx context.Context, userID uint, tasks []model.Task) error
	DeleteTasks(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

// TaskService owns task CRUD. Every operation carries the authenticated
// owner's user id down to the store, which enforces the ownership predicate.
type TaskService struct {
	tasks     TaskStore
	cache     TaskCache
	publisher TaskEventPublisher
}

type CreateTaskInput struct {
	UserID      uint
	Title       string
	Description string
}

type UpdateTaskInput struct {
	UserID uint
	TaskID uint
	Patch  model.TaskPatch
}

func NewTaskService(tasks TaskStore, cache TaskCache, publisher TaskEventPublisher) *TaskService {
	return &TaskService{
		tasks:     tasks,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	task := &model.Task{
		UserID:      input.UserID,
		Title:       title,
		Description: input.Description,
		Completed:   false,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, err
	}

	s.invalidate(ctx, model.TaskEventCreated, task.ID, input.UserID)
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID uint) ([]model.Task, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, ok, err := s.cache.GetTasks(ctx, userID); err == nil && ok {
				return cached, nil
			}
		}
	}

	tasks, err := s.tasks.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx, userID); err == nil && !dirty {
			if err := s.cache.SetTasks(ctx, userID, tasks); err != nil {
				log.Printf("cache task list failed: %v", err)
			}
		}
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, input UpdateTaskInput) (*model.Task, error) {
	if input.UserID == 0 || input.TaskID == 0 {
		return nil, ErrInvalidInput
	}
	if input.Patch.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if input.Patch.Title != nil && strings.TrimSpace(*input.Patch.Title) == "" {
		return nil, ErrTitleRequired
	}

	affected, err := s.tasks.Update(input.TaskID, input.UserID, input.Patch)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrTaskNotFound
	}

	s.invalidate(ctx, model.TaskEventUpdated, input.TaskID, input.UserID)

	updated, err := s.tasks.GetByIDAndUserID(input.TaskID, input.UserID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrTaskNotFound
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	if userID == 0 || taskID == 0 {
		return ErrInvalidInput
	}

	affected, err := s.tasks.Delete(taskID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	s.invalidate(ctx, model.TaskEventDeleted, taskID, userID)
	return nil
}

// invalidate marks the owner's cached list dirty, drops it, and publishes the
// change event for the invalidation worker. All best effort: a broken cache
// or broker must not fail a write that already committed.
func (s *TaskService) invalidate(ctx context.Context, eventType string, taskID, userID uint) {
	if s.cache != nil {
		if err := s.cache.MarkDirty(ctx, userID); err != nil {
			log.Printf("mark task cache dirty failed: %v", err)
		}
		if err := s.cache.DeleteTasks(ctx, userID); err != nil {
			log.Printf("drop task cache failed: %v", err)
		}
	}
	if s.publisher != nil {
		event := model.TaskEvent{
			Type:       eventType,
			TaskID:     taskID,
			UserID:     userID,
			OccurredAt: time.Now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("publish task event failed: %v", err)
		}
	}
}
