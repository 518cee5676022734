package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAgent struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (m *mockAgent) GetName() string     { return m.name }
func (m *mockAgent) GetSchedule() string { return m.schedule }

func (m *mockAgent) Execute(context.Context) error {
	m.runs.Add(1)
	return m.err
}

func TestRegisterAgent(t *testing.T) {
	s := NewScheduler(nil)

	require.NoError(t, s.RegisterAgent(&mockAgent{name: "on-demand"}))
	require.NoError(t, s.RegisterAgent(&mockAgent{name: "sweeper", schedule: "@every 5m"}))
	assert.Error(t, s.RegisterAgent(&mockAgent{name: "broken", schedule: "every now and then"}))

	assert.Equal(t, []string{"on-demand", "sweeper", "broken"}, s.GetRegisteredAgents())
}

func TestRunAgentByName(t *testing.T) {
	s := NewScheduler(nil)
	ok := &mockAgent{name: "ok"}
	failing := &mockAgent{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.RegisterAgent(ok))
	require.NoError(t, s.RegisterAgent(failing))

	ctx := context.Background()
	require.NoError(t, s.RunAgentByName(ctx, "ok"))
	assert.EqualValues(t, 1, ok.runs.Load())

	assert.EqualError(t, s.RunAgentByName(ctx, "failing"), "boom")
	assert.Error(t, s.RunAgentByName(ctx, "missing"))
}

func TestScheduledAgentRuns(t *testing.T) {
	s := NewScheduler(nil)
	a := &mockAgent{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.RegisterAgent(a))

	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return a.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
