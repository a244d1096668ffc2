package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"vortexkeep/internal/model"
)

// TaskListCache keeps each user's task list in redis for a short TTL. A
// dirty marker set on mutation suppresses reads and refills until the
// invalidation worker has drained the change event.
type TaskListCache struct {
	client         *redisv9.Client
	taskTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewTaskListCache(client *redisv9.Client, taskTTL, dirtyMarkerTTL time.Duration) *TaskListCache {
	if taskTTL <= 0 {
		taskTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &TaskListCache{
		client:         client,
		taskTTL:        taskTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *TaskListCache) GetTasks(ctx context.Context, userID uint) ([]model.Task, bool, error) {
	raw, err := c.client.Get(ctx, c.tasksKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get tasks failed: %w", err)
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached tasks failed: %w", err)
	}
	return tasks, true, nil
}

func (c *TaskListCache) SetTasks(ctx context.Context, userID uint, tasks []model.Task) error {
	payload, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal task cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.tasksKey(userID), payload, c.taskTTL).Err(); err != nil {
		return fmt.Errorf("redis set tasks failed: %w", err)
	}
	return nil
}

func (c *TaskListCache) DeleteTasks(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.tasksKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete tasks failed: %w", err)
	}
	return nil
}

func (c *TaskListCache) MarkDirty(ctx context.Context, userID uint) error {
	if err := c.client.Set(ctx, c.dirtyKey(userID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *TaskListCache) IsDirty(ctx context.Context, userID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *TaskListCache) tasksKey(userID uint) string {
	return fmt.Sprintf("tasks:list:%d", userID)
}

func (c *TaskListCache) dirtyKey(userID uint) string {
	return fmt.Sprintf("tasks:list:dirty:%d", userID)
}
