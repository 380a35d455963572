package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lysyi3m/gov-comb/app/kst"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const taskTimeout = 5 * time.Minute

// Scheduler writes a digest snapshot every time the cron spec fires. Runs never overlap;
// a run that is still going when the next one is due makes the next one skip.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	newTask func() TaskInterface
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewScheduler(spec string, builder DigestBuilder, dir string) (*Scheduler, error) {
	return newScheduler(spec, func() TaskInterface {
		return NewWriteDigestTask(builder, dir)
	})
}

func newScheduler(spec string, newTask func() TaskInterface) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug))
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(kst.Location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		spec:    spec,
		newTask: newTask,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		// spec was validated in NewScheduler
		slog.Error("Failed to schedule digest snapshots", "spec", s.spec, "error", err)
		return
	}
	s.cron.Start()

	slog.Info("Digest scheduler started", "spec", s.spec)
}

func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()

	slog.Info("Digest scheduler stopped")
}

func (s *Scheduler) run() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.executeTask(s.newTask())
}

func (s *Scheduler) executeTask(task TaskInterface) {
	info := task.Info()

	for {
		info.Begin()

		taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
		err := task.Execute(taskCtx)
		cancel()

		if err == nil {
			return
		}

		slog.Error("Task execution failed", "task", info, "error", err)

		if !info.CanRetry() {
			slog.Error("Task failed after maximum retries", "task", info, "max_retries", info.MaxRetries, "last_error", err)
			return
		}

		delay := info.RetryDelay()
		slog.Warn("Task retry scheduled", "task", info, "max_retries", info.MaxRetries, "delay", delay.String())

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "task", info)
			return
		case <-time.After(delay):
		}
	}
}
