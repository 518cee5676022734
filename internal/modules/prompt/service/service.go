package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/entity"
	"anoa.com/eduainexus/internal/modules/prompt/dto"
	"anoa.com/eduainexus/internal/modules/prompt/repository"
	search "anoa.com/eduainexus/internal/modules/search/service"
	userRepo "anoa.com/eduainexus/internal/modules/user/repository"
	"anoa.com/eduainexus/internal/promptvar"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/ratelimiter"
	"anoa.com/eduainexus/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	searchLimit     = 1000
	draftTitleLen   = 50
	illustrationDir = "illustrations"
)

type PromptService interface {
	List(ctx context.Context, viewerID *uuid.UUID, filter dto.PromptFilter) ([]dto.PromptResponse, error)
	Categories(ctx context.Context, viewerID *uuid.UUID) ([]string, error)
	Get(ctx context.Context, viewerID *uuid.UUID, id string) (*dto.PromptResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req dto.CreatePromptRequest) (*dto.PromptResponse, error)
	Update(ctx context.Context, userID uuid.UUID, id string, req dto.UpdatePromptRequest) (*dto.PromptResponse, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
	ToggleLike(ctx context.Context, userID uuid.UUID, id string) (*dto.LikeResponse, error)
	QuickTest(ctx context.Context, userID uuid.UUID, id string, req dto.QuickTestRequest) (*dto.QuickTestResponse, error)
	SmartPrompt(ctx context.Context, userID uuid.UUID, req dto.SmartPromptRequest) (*dto.SmartPromptResponse, error)
	Preview(req dto.PreviewRequest) dto.PreviewResponse
	Illustrate(ctx context.Context, userID uuid.UUID, id string) (*dto.IllustrationResponse, error)
}

type promptService struct {
	repo    repository.PromptRepository
	users   userRepo.UserRepository
	gateway ai.Gateway
	search  search.SearchService
	images  storage.ImageStorage
	folder  string
	limiter *ratelimiter.Limiter
	log     *logger.Logger
}

// NewPromptService accepts nil search and images; free-text search then falls back to
// substring matching and illustrations are returned inline.
func NewPromptService(
	repo repository.PromptRepository,
	users userRepo.UserRepository,
	gateway ai.Gateway,
	searchService search.SearchService,
	images storage.ImageStorage,
	folder string,
	limiter *ratelimiter.Limiter,
	log *logger.Logger,
) PromptService {
	if log == nil {
		log = logger.Nop()
	}
	return &promptService{
		repo:    repo,
		users:   users,
		gateway: gateway,
		search:  searchService,
		images:  images,
		folder:  folder,
		limiter: limiter,
		log:     log.With("component", "prompt"),
	}
}

func (s *promptService) viewer(ctx context.Context, userID *uuid.UUID) (*dto.Viewer, error) {
	if userID == nil {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("account no longer exists: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}
	return &dto.Viewer{ID: user.ID.String(), Role: user.Role}, nil
}

func viewerKey(v *dto.Viewer) *string {
	if v == nil {
		return nil
	}
	return &v.ID
}

func (s *promptService) visible(ctx context.Context, v *dto.Viewer) ([]entity.PromptTemplate, error) {
	prompts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	key := viewerKey(v)
	out := make([]entity.PromptTemplate, 0, len(prompts))
	for _, p := range prompts {
		if p.VisibleTo(key) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *promptService) List(ctx context.Context, viewerID *uuid.UUID, filter dto.PromptFilter) ([]dto.PromptResponse, error) {
	v, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	prompts, err := s.visible(ctx, v)
	if err != nil {
		return nil, err
	}

	matches := s.matcher(strings.TrimSpace(filter.Search))
	res := []dto.PromptResponse{}
	for i := range prompts {
		p := &prompts[i]
		if !matchRole(p, filter.Role) || !matchCategory(p, filter.Category) || !matches(p) {
			continue
		}
		res = append(res, dto.NewPromptResponse(p, v))
	}
	return res, nil
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, "ALL")
}

// matchRole accepts the role value or its display label.
func matchRole(p *entity.PromptTemplate, role string) bool {
	if isAll(role) {
		return true
	}
	return p.Role == role || entity.Role(p.Role).Label() == role
}

func matchCategory(p *entity.PromptTemplate, category string) bool {
	return isAll(category) || p.Category == category
}

// matcher prefers the search index and falls back to a case-insensitive substring
// match on title and description when the index is absent or fails.
func (s *promptService) matcher(query string) func(*entity.PromptTemplate) bool {
	if query == "" {
		return func(*entity.PromptTemplate) bool { return true }
	}

	if s.search != nil {
		ids, err := s.search.SearchPromptIDs(query, searchLimit)
		if err == nil {
			hit := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				hit[id] = struct{}{}
			}
			return func(p *entity.PromptTemplate) bool {
				_, ok := hit[p.ID]
				return ok
			}
		}
		s.log.Warn("search index unavailable, using substring match", "error", err)
	}

	needle := strings.ToLower(query)
	return func(p *entity.PromptTemplate) bool {
		return strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
	}
}

func (s *promptService) Categories(ctx context.Context, viewerID *uuid.UUID) ([]string, error) {
	v, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	prompts, err := s.visible(ctx, v)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range prompts {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories, nil
}

// find loads a prompt the viewer is allowed to see. Private prompts of other users
// are reported as missing.
func (s *promptService) find(ctx context.Context, v *dto.Viewer, id string) (*entity.PromptTemplate, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.VisibleTo(viewerKey(v)) {
		return nil, fmt.Errorf("prompt: %w", apperror.ErrNotFound)
	}
	return p, nil
}

func (s *promptService) Get(ctx context.Context, viewerID *uuid.UUID, id string) (*dto.PromptResponse, error) {
	v, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, v, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewPromptResponse(p, v)
	return &res, nil
}

func normalizedTags(tags []string, category string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = append(out, category)
	}
	return out
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func requireContent(title, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return fmt.Errorf("title and content must not be blank: %w", apperror.ErrBadRequest)
	}
	return nil
}

func (s *promptService) Create(ctx context.Context, userID uuid.UUID, req dto.CreatePromptRequest) (*dto.PromptResponse, error) {
	if err := requireContent(req.Title, req.Content); err != nil {
		return nil, err
	}
	v, err := s.viewer(ctx, &userID)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	category := orDefault(req.Category, dto.DefaultCategory)
	author := v.ID

	p := &entity.PromptTemplate{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Content:     req.Content,
		Tags:        normalizedTags(req.Tags, category),
		Role:        orDefault(req.Role, string(entity.RoleStudent)),
		Category:    category,
		AuthorID:    &author,
		IsPublic:    isPublic,
		Likes:       0,
		LikedBy:     datatypes.JSONSlice[string]{},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.index(p)

	res := dto.NewPromptResponse(p, v)
	return &res, nil
}

func (s *promptService) authorize(ctx context.Context, userID uuid.UUID, id, action string) (*entity.PromptTemplate, *dto.Viewer, error) {
	v, err := s.viewer(ctx, &userID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !p.CanModify(v.ID, v.Role) {
		if !p.VisibleTo(&v.ID) {
			return nil, nil, fmt.Errorf("prompt: %w", apperror.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("not allowed to %s this prompt: %w", action, apperror.ErrForbidden)
	}
	return p, v, nil
}

func (s *promptService) Update(ctx context.Context, userID uuid.UUID, id string, req dto.UpdatePromptRequest) (*dto.PromptResponse, error) {
	if err := requireContent(req.Title, req.Content); err != nil {
		return nil, err
	}
	p, v, err := s.authorize(ctx, userID, id, "edit")
	if err != nil {
		return nil, err
	}

	category := orDefault(req.Category, dto.DefaultCategory)
	p.Title = strings.TrimSpace(req.Title)
	p.Description = req.Description
	p.Content = req.Content
	p.Tags = normalizedTags(req.Tags, category)
	p.Role = orDefault(req.Role, string(entity.RoleStudent))
	p.Category = category
	p.IsPublic = req.IsPublic

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.index(p)

	res := dto.NewPromptResponse(p, v)
	return &res, nil
}

func (s *promptService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	p, _, err := s.authorize(ctx, userID, id, "delete")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	if s.search != nil {
		if err := s.search.DeletePrompt(p.ID); err != nil {
			s.log.Warn("failed to remove prompt from index", "id", p.ID, "error", err)
		}
	}
	return nil
}

// ToggleLike is a plain read-modify-write; concurrent toggles may lose an update.
func (s *promptService) ToggleLike(ctx context.Context, userID uuid.UUID, id string) (*dto.LikeResponse, error) {
	v, err := s.viewer(ctx, &userID)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, v, id)
	if err != nil {
		return nil, err
	}

	liked := p.ToggleLike(v.ID)
	if err := s.repo.UpdateLikes(ctx, p); err != nil {
		return nil, err
	}
	return &dto.LikeResponse{Liked: liked, Likes: p.Likes}, nil
}

func (s *promptService) index(p *entity.PromptTemplate) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexPrompt(p); err != nil {
		s.log.Warn("failed to index prompt", "id", p.ID, "error", err)
	}
}

func parseMode(raw string) (ai.Mode, error) {
	mode, err := ai.ParseMode(raw, ai.ModeFast)
	if err != nil {
		return "", fmt.Errorf("%s: %w", err.Error(), apperror.ErrBadRequest)
	}
	return mode, nil
}

func (s *promptService) QuickTest(ctx context.Context, userID uuid.UUID, id string, req dto.QuickTestRequest) (*dto.QuickTestResponse, error) {
	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	v, err := s.viewer(ctx, &userID)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, v, id)
	if err != nil {
		return nil, err
	}

	final := promptvar.Substitute(p.Content, req.Variables)
	var result ai.TextResult
	err = s.limiter.Do(ctx, userID, "quick_test", func() error {
		result = s.gateway.Run(ctx, final+ai.QuickTestSuffix, mode)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.QuickTestResponse{
		FinalPrompt: final,
		Result:      result.Text,
		Sources:     result.Sources,
		Degraded:    result.Degraded,
	}, nil
}

func (s *promptService) SmartPrompt(ctx context.Context, userID uuid.UUID, req dto.SmartPromptRequest) (*dto.SmartPromptResponse, error) {
	idea := strings.TrimSpace(req.Idea)
	if idea == "" {
		return nil, fmt.Errorf("idea must not be blank: %w", apperror.ErrBadRequest)
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	var result ai.TextResult
	err = s.limiter.Do(ctx, userID, "smart_prompt", func() error {
		result = s.gateway.SmartPrompt(ctx, idea, mode)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.SmartPromptResponse{
		Content:   result.Text,
		Sources:   result.Sources,
		Degraded:  result.Degraded,
		Variables: promptvar.Extract(result.Text),
		Draft: dto.PromptDraft{
			Title:       draftTitle(idea),
			Description: idea,
			Content:     result.Text,
			Category:    dto.DefaultCategory,
			Role:        string(entity.RoleStudent),
			IsPublic:    true,
		},
	}, nil
}

// draftTitle is the first line of the idea cut to fifty characters.
func draftTitle(idea string) string {
	line, _, _ := strings.Cut(idea, "\n")
	r := []rune(line)
	if len(r) > draftTitleLen {
		r = r[:draftTitleLen]
	}
	return string(r)
}

func (s *promptService) Preview(req dto.PreviewRequest) dto.PreviewResponse {
	fields := promptvar.Fields(req.Content)
	for i := range fields {
		fields[i].Value = req.Variables[fields[i].Name]
	}
	return dto.PreviewResponse{
		Variables:   fields,
		Missing:     promptvar.Missing(req.Content, req.Variables),
		FinalPrompt: promptvar.Substitute(req.Content, req.Variables),
	}
}

func (s *promptService) Illustrate(ctx context.Context, userID uuid.UUID, id string) (*dto.IllustrationResponse, error) {
	v, err := s.viewer(ctx, &userID)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, v, id)
	if err != nil {
		return nil, err
	}

	var image *ai.Blob
	err = s.limiter.Do(ctx, userID, "illustration", func() error {
		var genErr error
		image, genErr = s.gateway.Illustrate(ctx, illustrationSubject(p))
		return genErr
	})
	if err != nil {
		var rl *ratelimiter.RateLimitError
		if errors.As(err, &rl) || errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.log.Warn("illustration failed", "id", p.ID, "error", err)
		return nil, apperror.New(http.StatusBadGateway, "Không thể tạo hình minh họa.", err)
	}

	res := &dto.IllustrationResponse{MIMEType: image.MIMEType}
	if s.images != nil {
		url, err := s.images.UploadImage(ctx, bytes.NewReader(image.Data), s.folder+"/"+illustrationDir, p.ID)
		if err == nil {
			res.URL = url
			return res, nil
		}
		s.log.Warn("failed to archive illustration", "id", p.ID, "error", err)
	}
	res.Data = image.Data
	return res, nil
}

func illustrationSubject(p *entity.PromptTemplate) string {
	if p.Description == "" {
		return p.Title
	}
	return p.Title + ": " + p.Description
}
