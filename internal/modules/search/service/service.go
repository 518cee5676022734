package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/eduainexus/internal/entity"
	"anoa.com/eduainexus/pkg/logger"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const promptIndex = "prompts"

// SearchService keeps the prompt index in sync and answers free-text lookups.
// Visibility is never decided here; callers filter the returned ids.
type SearchService interface {
	IndexPrompt(prompt *entity.PromptTemplate) error
	IndexPrompts(prompts []entity.PromptTemplate) error
	DeletePrompt(id string) error
	SearchPromptIDs(query string, limit int64) ([]string, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *logger.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *logger.Logger) SearchService {
	if log == nil {
		log = logger.Nop()
	}
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.With("component", "search"),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	searchable := []string{"title", "description", "tags", "category"}
	if _, err := s.client.Index(promptIndex).UpdateSearchableAttributes(&searchable); err != nil {
		s.log.Warn("failed to update prompt searchable attributes", "error", err)
	}

	filterableAttrs := []string{"category", "role", "is_public"}
	filterable := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterable[i] = v
	}
	if _, err := s.client.Index(promptIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn("failed to update prompt filterable attributes", "error", err)
	}

	sortable := []string{"created_at", "likes"}
	if _, err := s.client.Index(promptIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("failed to update prompt sortable attributes", "error", err)
	}

	s.log.Info("meilisearch indexes initialized")
}

type meiliPromptDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Role        string   `json:"role"`
	IsPublic    bool     `json:"is_public"`
	Likes       int      `json:"likes"`
	CreatedAt   int64    `json:"created_at"`
}

// cleanText strips markup from user-authored fields before they reach the index.
func (s *meiliSearchService) cleanText(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	return strings.Join(strings.Fields(html.UnescapeString(sanitized)), " ")
}

func (s *meiliSearchService) toDoc(p *entity.PromptTemplate) meiliPromptDoc {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, s.cleanText(t))
	}
	return meiliPromptDoc{
		ID:          p.ID,
		Title:       s.cleanText(p.Title),
		Description: s.cleanText(p.Description),
		Tags:        tags,
		Category:    p.Category,
		Role:        p.Role,
		IsPublic:    p.IsPublic,
		Likes:       p.Likes,
		CreatedAt:   p.CreatedAt,
	}
}

func (s *meiliSearchService) IndexPrompt(prompt *entity.PromptTemplate) error {
	return s.IndexPrompts([]entity.PromptTemplate{*prompt})
}

func (s *meiliSearchService) IndexPrompts(prompts []entity.PromptTemplate) error {
	if len(prompts) == 0 {
		return nil
	}
	docs := make([]meiliPromptDoc, 0, len(prompts))
	for i := range prompts {
		docs = append(docs, s.toDoc(&prompts[i]))
	}

	task, err := s.client.Index(promptIndex).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index prompts: %w", err)
	}
	s.log.Debug("indexed prompts", "count", len(docs), "task", task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeletePrompt(id string) error {
	_, err := s.client.Index(promptIndex).DeleteDocument(id)
	return err
}

func (s *meiliSearchService) SearchPromptIDs(query string, limit int64) ([]string, error) {
	resp, err := s.client.Index(promptIndex).Search(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search prompts: %w", err)
	}

	// re-decode so the hit shape of the client does not leak past this package
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}
	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.ID != "" {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
