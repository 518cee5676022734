package service

import (
	"context"
	"time"

	"anoa.com/eduainexus/pkg/logger"
)

// SweepAgent evicts idle conversations on a cron schedule.
type SweepAgent struct {
	registry Registry
	idle     time.Duration
	schedule string
	log      *logger.Logger
}

func NewSweepAgent(registry Registry, idle time.Duration, schedule string, log *logger.Logger) *SweepAgent {
	if log == nil {
		log = logger.Nop()
	}
	return &SweepAgent{registry: registry, idle: idle, schedule: schedule, log: log}
}

func (a *SweepAgent) GetName() string {
	return "conversation-sweeper"
}

func (a *SweepAgent) GetSchedule() string {
	return a.schedule
}

func (a *SweepAgent) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	removed := a.registry.Sweep(a.idle)
	if removed > 0 {
		a.log.Info("idle conversations evicted", "removed", removed, "remaining", a.registry.Len())
	}
	return nil
}
