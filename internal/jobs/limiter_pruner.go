package jobs

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orbtao/connectify/backend/pkg/logger"
)

// Pruner drops rate limit buckets that have gone idle.
type Pruner interface {
	Prune() int
}

// LimiterPruner keeps the in-memory rate limiter from growing with every
// address it has ever seen.
type LimiterPruner struct {
	pruner    Pruner
	interval  time.Duration
	log       logger.Logger
	scheduler gocron.Scheduler
}

func NewLimiterPruner(p Pruner, interval time.Duration, log logger.Logger) *LimiterPruner {
	return &LimiterPruner{
		pruner:   p,
		interval: interval,
		log:      log.WithComponent("limiter-pruner"),
	}
}

func (p *LimiterPruner) RunOnce() {
	if n := p.pruner.Prune(); n > 0 {
		p.log.Debug("Pruned idle rate limit buckets", "count", n)
	}
}

func (p *LimiterPruner) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if _, err = scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(p.RunOnce),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule limiter prune: %w", err)
	}
	scheduler.Start()
	p.scheduler = scheduler
	return nil
}

func (p *LimiterPruner) Stop() error {
	if p.scheduler == nil {
		return nil
	}
	return p.scheduler.Shutdown()
}
