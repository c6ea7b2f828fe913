// Package scheduler provides periodic background tasks.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/havenstays/booking-backend/internal/common/logger"
)

// Scheduler runs registered tasks on fixed intervals.
type Scheduler struct {
	tasks  []*Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Task is a periodic job.
type Task struct {
	Name     string
	Interval time.Duration
	Handler  func(ctx context.Context) error
}

// NewScheduler creates a scheduler.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make([]*Task, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTask registers a task.
func (s *Scheduler) AddTask(name string, interval time.Duration, handler func(ctx context.Context) error) {
	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Interval: interval,
		Handler:  handler,
	})
}

// Start launches one goroutine per task. Each task runs once
// immediately, then on its interval.
func (s *Scheduler) Start() {
	logger.Info("scheduler starting", logger.Int("tasks", len(s.tasks)))

	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runTask(task)
	}
}

// Stop cancels all tasks and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	logger.Info("scheduler stopping")
	s.cancel()
	s.wg.Wait()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) runTask(task *Task) {
	defer s.wg.Done()

	logger.Info("task started",
		logger.String("task", task.Name),
		logger.Duration("interval", task.Interval),
	)

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	s.executeTask(task)

	for {
		select {
		case <-s.ctx.Done():
			logger.Info("task stopped", logger.String("task", task.Name))
			return
		case <-ticker.C:
			s.executeTask(task)
		}
	}
}

func (s *Scheduler) executeTask(task *Task) {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := task.Handler(ctx); err != nil {
		logger.Error("task failed",
			logger.String("task", task.Name),
			logger.Err(err),
		)
		return
	}
	logger.Info("task completed",
		logger.String("task", task.Name),
		logger.Duration("elapsed", time.Since(start)),
	)
}
