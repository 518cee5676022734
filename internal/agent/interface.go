package agent

import "context"

// Agent is a background task run by the Scheduler.
//
// Registered agents:
//   - conversation-sweeper: evicts idle chat sessions
//   - search-reindexer: pushes the prompt library into the search index
type Agent interface {
	// GetName is the unique name used for logging and on-demand runs.
	GetName() string

	// GetSchedule returns a cron spec ("@every 5m", "0 3 * * *"). An empty string
	// registers the agent for on-demand runs only.
	GetSchedule() string

	Execute(ctx context.Context) error
}
