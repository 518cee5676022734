package agent

import (
	"context"
	"fmt"
	"time"

	"anoa.com/eduainexus/pkg/logger"
	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 5 * time.Minute

// Scheduler runs registered agents on their cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	agents  []Agent
	timeout time.Duration
	log     *logger.Logger
}

func NewScheduler(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		agents:  make([]Agent, 0),
		timeout: defaultJobTimeout,
		log:     log.With("component", "scheduler"),
	}
}

// RegisterAgent adds agent and schedules it when it has a cron spec.
func (s *Scheduler) RegisterAgent(agent Agent) error {
	s.agents = append(s.agents, agent)

	schedule := agent.GetSchedule()
	if schedule == "" {
		s.log.Info("agent registered for on-demand runs", "agent", agent.GetName())
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.run(ctx, agent)
	})
	if err != nil {
		return fmt.Errorf("schedule agent %s: %w", agent.GetName(), err)
	}

	s.log.Info("agent scheduled", "agent", agent.GetName(), "schedule", schedule)
	return nil
}

func (s *Scheduler) run(ctx context.Context, agent Agent) error {
	start := time.Now()
	if err := agent.Execute(ctx); err != nil {
		s.log.Error("agent failed", "agent", agent.GetName(), "error", err)
		return err
	}
	s.log.Debug("agent finished", "agent", agent.GetName(), "took", time.Since(start))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "agents", len(s.agents))
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped")
}

// RunAgentByName executes one agent outside its schedule.
func (s *Scheduler) RunAgentByName(ctx context.Context, name string) error {
	for _, agent := range s.agents {
		if agent.GetName() == name {
			return s.run(ctx, agent)
		}
	}
	return fmt.Errorf("agent %q not registered", name)
}

func (s *Scheduler) GetRegisteredAgents() []string {
	names := make([]string, len(s.agents))
	for i, agent := range s.agents {
		names[i] = agent.GetName()
	}
	return names
}
