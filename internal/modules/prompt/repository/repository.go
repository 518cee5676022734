package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/eduainexus/internal/entity"
	"anoa.com/eduainexus/pkg/apperror"
	"gorm.io/gorm"
)

type PromptRepository interface {
	FindAll(ctx context.Context) ([]entity.PromptTemplate, error)
	FindByID(ctx context.Context, id string) (*entity.PromptTemplate, error)
	Create(ctx context.Context, prompt *entity.PromptTemplate) error
	Update(ctx context.Context, prompt *entity.PromptTemplate) error
	UpdateLikes(ctx context.Context, prompt *entity.PromptTemplate) error
	Delete(ctx context.Context, id string) error
}

type promptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

// FindAll returns every template, newest first. Visibility is decided by the caller.
func (r *promptRepository) FindAll(ctx context.Context) ([]entity.PromptTemplate, error) {
	var prompts []entity.PromptTemplate
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *promptRepository) FindByID(ctx context.Context, id string) (*entity.PromptTemplate, error) {
	var prompt entity.PromptTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("prompt: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return &prompt, nil
}

func (r *promptRepository) Create(ctx context.Context, prompt *entity.PromptTemplate) error {
	return r.db.WithContext(ctx).Create(prompt).Error
}

// Update writes the mutable fields only; author, likes and creation time are left alone.
func (r *promptRepository) Update(ctx context.Context, prompt *entity.PromptTemplate) error {
	return r.db.WithContext(ctx).
		Model(prompt).
		Select("title", "description", "content", "tags", "role", "category", "is_public").
		Updates(prompt).Error
}

func (r *promptRepository) UpdateLikes(ctx context.Context, prompt *entity.PromptTemplate) error {
	return r.db.WithContext(ctx).
		Model(prompt).
		Select("likes", "liked_by").
		Updates(prompt).Error
}

func (r *promptRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.PromptTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("prompt: %w", apperror.ErrNotFound)
	}
	return nil
}
