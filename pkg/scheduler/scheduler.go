package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Scheduler runs periodic maintenance jobs next to the HTTP server.
type Scheduler struct {
	cron gocron.Scheduler
	log  *zap.Logger
}

func New(loc *time.Location, log *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{cron: s, log: log.With(zap.String("component", "scheduler"))}, nil
}

// Every registers fn to run each interval. A run is skipped while the previous one is still going.
func (s *Scheduler) Every(name string, interval time.Duration, timeout time.Duration, fn func(ctx context.Context) error) error {
	_, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			start := time.Now()
			if err := fn(ctx); err != nil {
				s.log.Error("Job failed", zap.String("job", name), zap.Error(err))
				return
			}
			s.log.Debug("Job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Jobs())))
}

func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}
