package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"transitops/config"
	"transitops/services/command"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeSessionExpire = "session:expire"

// ExpirePayload identifies the confirmation session to expire.
type ExpirePayload struct {
	SessionID string `json:"sessionId"`
}

func queueOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewExpiryEnqueuer returns a function that schedules the expiry sweep for a
// newly created confirmation session.
func NewExpiryEnqueuer() func(ctx context.Context, sessionID string) {
	client := asynq.NewClient(queueOpts())
	return func(ctx context.Context, sessionID string) {
		payload, err := json.Marshal(ExpirePayload{SessionID: sessionID})
		if err != nil {
			log.Printf("[SessionExpiry] failed to encode payload: %v", err)
			return
		}
		task := asynq.NewTask(TypeSessionExpire, payload)
		if _, err := client.EnqueueContext(ctx, task, asynq.ProcessIn(config.ConfirmationTTL())); err != nil {
			log.Printf("[SessionExpiry] failed to enqueue expiry for %s: %v", sessionID, err)
		}
	}
}

// InitSessionExpiryWorker runs the async worker in the background. It marks
// pending confirmations EXPIRED once their TTL elapses, so a late confirm
// gets a precise answer.
func InitSessionExpiryWorker(sessions *command.SessionManager) {
	srv := asynq.NewServer(
		queueOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSessionExpire, handleExpireTask(sessions))

	go monitorRedisConnection()

	go func() {
		log.Println("[SessionExpiry] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SessionExpiry] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SessionExpiry] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleExpireTask(sessions *command.SessionManager) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[SessionExpiry] invalid payload: %v", err)
			return err
		}
		return sessions.ExpireIfPending(ctx, p.SessionID)
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[SessionExpiry] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
