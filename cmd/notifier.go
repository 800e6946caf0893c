package cmd

import (
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	config "todo-list.com/todo-list/internal/configs"
	"todo-list.com/todo-list/internal/queue"
	repository "todo-list.com/todo-list/internal/repositories"
	"todo-list.com/todo-list/internal/services"
	"todo-list.com/todo-list/internal/telegram"
)

// newNotifier wires the dispatcher, its worker pool and the scheduler. redis
// may be nil.
func newNotifier(cfg config.Config, tasks *repository.TaskRepository, redis rueidis.Client, logger *zap.Logger) (*services.PoolService, *services.NotificationScheduler) {
	var messenger services.Messenger
	if cfg.TelegramBotToken != "" {
		messenger = telegram.NewClient(cfg.TelegramBotToken)
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN is not set, reminders will not be delivered")
	}

	var claimer services.DispatchClaimer
	if redis != nil {
		claimer = queue.NewRedisDispatchClaimer(redis, cfg.RedisKeyPrefix, time.Duration(cfg.NotifyClaimTTLSeconds)*time.Second)
	}

	sendTimeout := time.Duration(cfg.TelegramSendTimeoutSeconds) * time.Second
	dispatcher := services.NewNotificationDispatcher(
		tasks,
		messenger,
		claimer,
		sendTimeout,
		cfg.Location(),
		logger.Named("dispatcher"),
	)
	pool := services.NewPoolService(dispatcher, cfg.NotifyWorkers, cfg.NotifyQueueSize, logger.Named("pool"),
		services.WithJobTimeout(sendTimeout+10*time.Second),
	)
	scheduler := services.NewNotificationScheduler(tasks, pool, logger.Named("scheduler"), services.SchedulerConfig{
		Interval:  time.Duration(cfg.NotifyIntervalSeconds) * time.Second,
		BatchSize: cfg.NotifyBatchSize,
	})
	return pool, scheduler
}

func newRedis(cfg config.Config) (rueidis.Client, error) {
	if !cfg.RedisEnabled {
		return nil, nil
	}
	return config.NewRedisClient(cfg.RedisAddr)
}
