package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// New dials the broker and declares the task event queue up front, so the
// publisher and the invalidation worker never race on its creation.
func New(ctx context.Context, url, taskEventQueue string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	done := make(chan error, 1)
	go func() {
		_, queueErr := ch.QueueDeclare(
			taskEventQueue,
			true,
			false,
			false,
			false,
			nil,
		)
		done <- queueErr
	}()

	select {
	case <-checkCtx.Done():
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare timeout: %w", checkCtx.Err())
	case err := <-done:
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("declare task event queue failed: %w", err)
		}
		return conn, nil
	}
}
