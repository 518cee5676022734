package bootstrap

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"anoa.com/eduainexus/internal/entity"
	"anoa.com/eduainexus/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed data/sample_prompts.json
var samplePromptsJSON []byte

type samplePrompt struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Role        string   `json:"role"`
	Category    string   `json:"category"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.PromptTemplate{},
	)
}

// SamplePrompts returns the built-in library. Built-ins have no author and are always public.
func SamplePrompts() ([]entity.PromptTemplate, error) {
	var samples []samplePrompt
	if err := json.Unmarshal(samplePromptsJSON, &samples); err != nil {
		return nil, fmt.Errorf("decode sample prompts: %w", err)
	}

	prompts := make([]entity.PromptTemplate, 0, len(samples))
	for _, s := range samples {
		prompts = append(prompts, entity.PromptTemplate{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Content:     s.Content,
			Tags:        datatypes.JSONSlice[string](s.Tags),
			Role:        s.Role,
			Category:    s.Category,
			IsPublic:    true,
			LikedBy:     datatypes.JSONSlice[string]{},
		})
	}
	return prompts, nil
}

// SeedSamplePrompts inserts the built-in library, leaving rows that already exist untouched
// so likes collected on a built-in survive restarts.
func SeedSamplePrompts(db *gorm.DB, log *logger.Logger) ([]entity.PromptTemplate, error) {
	prompts, err := SamplePrompts()
	if err != nil {
		return nil, err
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&prompts, 50)
	if result.Error != nil {
		return nil, result.Error
	}

	if log != nil {
		log.Info("sample prompts seeded", "total", len(prompts), "inserted", result.RowsAffected)
	}
	return prompts, nil
}
