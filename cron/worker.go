package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lifedrop/config"
	"lifedrop/models"
	"lifedrop/services/notification"
	"lifedrop/services/tasks"
	"lifedrop/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Sweeper runs one cooldown sweep.
type Sweeper interface {
	SweepCooldowns(ctx context.Context) (int, error)
}

// RedisOpt returns the connection of the task queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes queued tasks to their handlers.
func NewMux(notifier notification.Notifier, sweeper Sweeper) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePushSend, HandlePushTask(notifier))
	mux.HandleFunc(tasks.TypeCooldownSweep, HandleCooldownSweep(sweeper))
	return mux
}

// InitWorker starts the task server and the cooldown scheduler in the
// background. The returned function stops both.
func InitWorker(notifier notification.Notifier, sweeper Sweeper) (func(), error) {
	logger := utils.GetLogger().Named("worker")

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueAlerts: 6,
				"default":         1,
			},
		},
	)

	scheduler := asynq.NewScheduler(RedisOpt(), &asynq.SchedulerOpts{Location: time.UTC})
	entryID, err := scheduler.Register(config.AppConfig.CooldownSweepCron, tasks.NewCooldownSweepTask())
	if err != nil {
		return nil, fmt.Errorf("failed to register cooldown sweep %q: %w", config.AppConfig.CooldownSweepCron, err)
	}
	logger.Info("cooldown sweep scheduled", zap.String("cron", config.AppConfig.CooldownSweepCron), zap.String("entry", entryID))

	mux := NewMux(notifier, sweeper)

	// Start async worker with retry logic
	go func() {
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
		logger.Error("worker gave up after max attempts")
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("scheduler stopped", zap.Error(err))
		}
	}()

	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}, nil
}

// HandlePushTask delivers one queued push. Payloads that can never succeed
// are not retried.
func HandlePushTask(notifier notification.Notifier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		p, err := tasks.DecodePushPayload(task)
		if err != nil {
			logger.Error("invalid push payload", zap.Error(err))
			return fmt.Errorf("decode push payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.Token == "" {
			logger.Warn("push without token dropped", zap.String("donorID", p.DonorID))
			return nil
		}
		switch p.Kind {
		case models.PushRequestAlert, models.PushCooldownComplete:
		default:
			logger.Warn("unknown push kind", zap.String("kind", p.Kind))
			return nil
		}

		if err := notifier.Push(ctx, p); err != nil {
			logger.Error("failed to send push", zap.String("donorID", p.DonorID), zap.Error(err))
			return err
		}
		return nil
	}
}

// HandleCooldownSweep runs the periodic sweep.
func HandleCooldownSweep(sweeper Sweeper) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := sweeper.SweepCooldowns(ctx)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("scheduled cooldown sweep done", zap.Int("marked", n))
		return nil
	}
}

var errNoNotifier = errors.New("push messaging is not configured")

// NoopNotifier stands in when Firebase credentials are missing; tasks fail
// and stay in the queue for a later retry.
type NoopNotifier struct{}

func (NoopNotifier) Push(context.Context, models.PushPayload) error {
	return utils.NewNotificationError(errNoNotifier, "push not sent")
}
