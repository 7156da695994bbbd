package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orbtao/connectify/backend/pkg/logger"
)

// Sweeper removes stories whose expiry has passed and reports how many.
type Sweeper interface {
	SweepExpiredStories(ctx context.Context) (int64, error)
}

// StorySweeper periodically deletes expired stories. Reads already hide them,
// so a missed run only leaves dead documents behind.
type StorySweeper struct {
	sweeper   Sweeper
	interval  time.Duration
	log       logger.Logger
	scheduler gocron.Scheduler
}

func NewStorySweeper(s Sweeper, interval time.Duration, log logger.Logger) *StorySweeper {
	return &StorySweeper{
		sweeper:  s,
		interval: interval,
		log:      log.WithComponent("story-sweeper"),
	}
}

// RunOnce performs a single sweep.
func (s *StorySweeper) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := s.sweeper.SweepExpiredStories(ctx)
	if err != nil {
		s.log.Error("Failed to sweep expired stories", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("Swept expired stories", "count", n)
	}
}

// Start schedules the sweep every interval until Stop.
func (s *StorySweeper) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			s.RunOnce(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule story sweep: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler
	s.log.Info("Story sweep scheduled", "interval", s.interval)
	return nil
}

func (s *StorySweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	s.log.Info("Stopping story sweep scheduler")
	return s.scheduler.Shutdown()
}
