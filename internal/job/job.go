// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package job schedules recurring tasks that never overlap with themselves.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/wneessen/city-weather/internal/logger"
)

// Task is the unit of work executed by a scheduled job.
type Task func(context.Context) error

var ErrNilTask = errors.New("job task must not be nil")

type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *logger.Logger
}

// New returns a stopped Scheduler. Failed runs are logged at debug level.
func New(log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	scheduler, err := gocron.NewScheduler(
		gocron.WithLogger(log.Logger),
		gocron.WithGlobalJobOptions(gocron.WithEventListeners(
			gocron.AfterJobRunsWithError(func(jobID uuid.UUID, name string, err error) {
				log.Debug("job run failed", slog.String("job", name), slog.String("job_id", jobID.String()),
					logger.Err(err))
			}),
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{scheduler: scheduler, logger: log}, nil
}

// Every registers task to run at the given interval until ctx is cancelled. A run that
// becomes due while the previous run is still executing is skipped.
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	if interval <= 0 {
		return fmt.Errorf("invalid interval for job %s: %s", name, interval)
	}
	_, err := s.scheduler.NewJob(gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) error { return task(ctx) }),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", name, err)
	}
	s.logger.Debug("job scheduled", slog.String("job", name), slog.Duration("interval", interval))
	return nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Shutdown stops the scheduler and waits for running jobs to return.
func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
