package workers

import (
	"context"
	"time"

	"messaging_backend/internal/logger"
)

// Task does one unit of housekeeping and reports how many items it touched.
type Task func(ctx context.Context) (int, error)

// PeriodicWorker runs a Task on a fixed interval until its context is cancelled.
type PeriodicWorker struct {
	name     string
	interval time.Duration
	task     Task
}

func NewPeriodicWorker(name string, interval time.Duration, task Task) *PeriodicWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicWorker{name: name, interval: interval, task: task}
}

// Start runs the worker in its own goroutine.
func (w *PeriodicWorker) Start(ctx context.Context) {
	go w.Run(ctx)
}

// Run blocks until ctx is done.
func (w *PeriodicWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log := logger.With("worker", w.name)
	log.Info("worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		case <-ticker.C:
			n, err := w.task(ctx)
			if err != nil {
				log.Error("worker task failed", "error", err)
			} else if n > 0 {
				log.Debug("worker task done", "affected", n)
			}
		}
	}
}
