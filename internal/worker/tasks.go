package worker

import (
	"encoding/json"
	"time"

	"github.com/boxhub-dev/boxhub/internal/notifier"
	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskNotificationDispatch = "notification:dispatch"
)

// Package-level Asynq client (singleton)
var client *asynq.Client

// InitClient initializes the global Asynq client for task enqueueing.
// Must be called before EnqueueNotification.
func InitClient(redisURL string) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return err
	}

	client = asynq.NewClient(opt)
	return nil
}

// CloseClient closes the Asynq client connection gracefully.
func CloseClient() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// EnqueueNotification queues one notification email for background delivery.
// MaxRetry is 0: a failed send is logged and recorded, never retried.
func EnqueueNotification(msg notifier.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	task := asynq.NewTask(
		TaskNotificationDispatch,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	)

	_, err = client.Enqueue(task)
	return err
}
