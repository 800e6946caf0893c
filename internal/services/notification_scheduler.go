package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	model "todo-list.com/todo-list/internal/models"
	repository "todo-list.com/todo-list/internal/repositories"
)

type DueTaskQuerier interface {
	QueryDueUnnotified(ctx context.Context, now time.Time, after *repository.DueCursor, limit int) ([]model.Task, error)
}

type JobQueue interface {
	Enqueue(taskID string) error
}

// SchedulerConfig controls how often due tasks are swept. BatchSize is the
// page size of the due-task query; a sweep reads every page.
type SchedulerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// NotificationScheduler finds due, unnotified tasks and queues one dispatch
// job per task.
type NotificationScheduler struct {
	tasks  DueTaskQuerier
	queue  JobQueue
	logger *zap.Logger
	cron   *cron.Cron
	cfg    SchedulerConfig
	now    func() time.Time
}

func NewNotificationScheduler(tasks DueTaskQuerier, queue JobQueue, logger *zap.Logger, cfg SchedulerConfig) *NotificationScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Interval < time.Second {
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &NotificationScheduler{
		tasks:  tasks,
		queue:  queue,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("notification sweep failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the periodic sweeps.
func (s *NotificationScheduler) Start() {
	s.cron.Start()
	s.logger.Info("notification scheduler started", zap.Duration("interval", s.cfg.Interval))
}

// Stop stops the schedule and waits for a running sweep.
func (s *NotificationScheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("notification scheduler stopped")
}

// Sweep queues a dispatch job for every due task whose owner has a handle and
// returns how many jobs were queued.
func (s *NotificationScheduler) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	scheduled, due := 0, 0
	var cursor *repository.DueCursor

	for {
		tasks, err := s.tasks.QueryDueUnnotified(ctx, now, cursor, s.cfg.BatchSize)
		if err != nil {
			return scheduled, err
		}
		due += len(tasks)

		for _, task := range tasks {
			if !task.User.HasTelegram() || task.DueDate == nil {
				continue
			}

			err := s.queue.Enqueue(task.ID)
			switch {
			case err == nil:
				scheduled++
			case errors.Is(err, ErrAlreadyQueued):
			default:
				s.logger.Warn("notification sweep stopped early",
					zap.Int("scheduled", scheduled),
					zap.Int("due", due),
					zap.Error(err),
				)
				return scheduled, nil
			}
		}

		last := len(tasks) - 1
		if len(tasks) < s.cfg.BatchSize || tasks[last].DueDate == nil {
			break
		}
		cursor = &repository.DueCursor{DueDate: *tasks[last].DueDate, ID: tasks[last].ID}
	}

	s.logger.Info("notification sweep finished", zap.Int("due", due), zap.Int("scheduled", scheduled))
	return scheduled, nil
}
