package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"vortexkeep/internal/cache"
	"vortexkeep/internal/model"
)

// CacheInvalidationWorker drains task change events and drops the owner's
// cached task list, so stale entries never outlive the dirty marker window.
type CacheInvalidationWorker struct {
	conn      *amqp.Connection
	cache     *cache.TaskListCache
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCacheInvalidationWorker(conn *amqp.Connection, taskCache *cache.TaskListCache, queueName string) *CacheInvalidationWorker {
	return &CacheInvalidationWorker{
		conn:      conn,
		cache:     taskCache,
		queueName: queueName,
	}
}

func (w *CacheInvalidationWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event model.TaskEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode task event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.cache.DeleteTasks(workerCtx, event.UserID); err != nil {
					log.Printf("worker invalidate task cache failed: %v", err)
					_ = d.Nack(false, true)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *CacheInvalidationWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
