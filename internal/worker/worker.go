package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/boxhub-dev/boxhub/internal/notifier"
	"github.com/hibiken/asynq"
)

// Start starts the Asynq worker in non-blocking embedded mode and returns a
// stop function for shutdown coordination.
func Start(redisURL string) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotificationDispatch, handleNotificationDispatch)

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}

	log.Printf("Notification worker started (redis: %s)", redisURL)
	return func() { srv.Shutdown() }, nil
}

// handleNotificationDispatch delivers a queued notification email. Delivery
// failures are logged, not returned: notification is best effort and the
// task must not be retried or marked failed.
func handleNotificationDispatch(ctx context.Context, task *asynq.Task) error {
	var msg notifier.Message

	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
	}

	if err := notifier.Deliver(ctx, msg); err != nil {
		log.Printf("Failed to deliver notification for %v: %v", msg.To, err)
	}

	return nil
}
