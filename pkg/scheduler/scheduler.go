package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is a unit of scheduled work.
type Task func(ctx context.Context) error

// Scheduler runs named tasks on cron specs with seconds precision.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

// New creates a scheduler. Each task run is bounded by timeout.
func New(logger *zap.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a task under the given six-field cron spec.
func (s *Scheduler) Register(name, spec string, task Task) error {
	if _, err := s.cron.AddFunc(spec, func() { s.Run(name, task) }); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	s.logger.Info("scheduled task registered", zap.String("task", name), zap.String("spec", spec))
	return nil
}

// Run executes a task once with logging and a timeout.
func (s *Scheduler) Run(name string, task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := task(ctx); err != nil {
		s.logger.Error("scheduled task failed", zap.String("task", name), zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	s.logger.Info("scheduled task finished", zap.String("task", name), zap.Duration("duration", time.Since(start)))
}

// Start begins firing registered tasks.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running tasks to complete.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
