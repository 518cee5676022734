package service

import (
	"context"

	"anoa.com/eduainexus/internal/entity"
)

const ReindexAgentName = "search-reindexer"

// PromptSource is the slice of the prompt repository the reindexer reads.
type PromptSource interface {
	FindAll(ctx context.Context) ([]entity.PromptTemplate, error)
}

// ReindexAgent pushes the whole prompt library into the index. It runs once at boot
// and then on its schedule, repairing documents whose incremental update was lost.
type ReindexAgent struct {
	search   SearchService
	source   PromptSource
	schedule string
}

func NewReindexAgent(search SearchService, source PromptSource, schedule string) *ReindexAgent {
	return &ReindexAgent{search: search, source: source, schedule: schedule}
}

func (a *ReindexAgent) GetName() string {
	return ReindexAgentName
}

func (a *ReindexAgent) GetSchedule() string {
	return a.schedule
}

func (a *ReindexAgent) Execute(ctx context.Context) error {
	prompts, err := a.source.FindAll(ctx)
	if err != nil {
		return err
	}
	return a.search.IndexPrompts(prompts)
}
