package processor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// WorkerPoolService runs the tasks of a consumed batch on a bounded ants
// pool. At most Capacity tasks run at once.
type WorkerPoolService struct {
	pool   *ants.Pool
	logger *slog.Logger
}

func NewWorkerPoolService(logger *slog.Logger, size int) (*WorkerPoolService, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolService{
		pool:   pool,
		logger: logger.With("component", "worker_pool"),
	}, nil
}

// RunAll submits every task and waits for all of them. Task errors and
// panics are joined into the returned error.
func (s *WorkerPoolService) RunAll(tasks []func() error) error {
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Task panicked", "panic", r)
					errs[i] = fmt.Errorf("task panicked: %v", r)
				}
			}()
			errs[i] = task()
		})
		if err != nil {
			wg.Done()
			s.logger.Error("Failed to submit task to worker pool", "error", err)
			errs[i] = fmt.Errorf("failed to submit task: %w", err)
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolService) Capacity() int {
	return s.pool.Cap()
}
