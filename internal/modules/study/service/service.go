package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/eduainexus/internal/ai"
	conversation "anoa.com/eduainexus/internal/modules/conversation/service"
	"anoa.com/eduainexus/internal/modules/study/dto"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/ratelimiter"
	"anoa.com/eduainexus/pkg/upload"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultSessionTitle = "Study Space"

// DocumentTypes are the uploads the study space can read text from.
var DocumentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
	"image/*",
	"video/*",
}

type StudyService interface {
	Summary(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) (*dto.SummaryResponse, error)
	Flashcards(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) ([]ai.Flashcard, error)
	Quiz(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) ([]ai.QuizQuestion, error)
	RelatedTopics(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) ([]ai.RelatedTopic, error)
	// Toolkit runs the four generators concurrently.
	Toolkit(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) (*dto.ToolkitResponse, error)
	Extract(ctx context.Context, userID uuid.UUID, file *upload.File) (*dto.ExtractResponse, error)
	OpenSession(ctx context.Context, userID uuid.UUID, req dto.StudySessionRequest) (*dto.StudySessionResponse, error)
	// Expand writes a section on a related topic and appends it to the document.
	Expand(ctx context.Context, userID uuid.UUID, req dto.ExpandRequest) (*dto.ExpandResponse, error)
}

type studyService struct {
	gateway       ai.Gateway
	conversations conversation.ConversationService
	limiter       *ratelimiter.Limiter
	log           *logger.Logger
}

func NewStudyService(gateway ai.Gateway, conversations conversation.ConversationService, limiter *ratelimiter.Limiter, log *logger.Logger) StudyService {
	if log == nil {
		log = logger.Nop()
	}
	return &studyService{
		gateway:       gateway,
		conversations: conversations,
		limiter:       limiter,
		log:           log.With("component", "study"),
	}
}

func parseInput(text, mode string) (ai.Mode, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("document text must not be blank: %w", apperror.ErrBadRequest)
	}
	m, err := ai.ParseMode(mode, ai.ModeFast)
	if err != nil {
		return "", fmt.Errorf("%s: %w", err.Error(), apperror.ErrBadRequest)
	}
	return m, nil
}

func (s *studyService) Summary(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) (*dto.SummaryResponse, error) {
	mode, err := parseInput(req.Text, req.Mode)
	if err != nil {
		return nil, err
	}

	var res ai.TextResult
	err = s.limiter.Do(ctx, userID, "study_summary", func() error {
		res = s.gateway.Summary(ctx, req.Text, mode)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.SummaryResponse{Summary: res.Text, Degraded: res.Degraded}, nil
}

func (s *studyService) Flashcards(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) ([]ai.Flashcard, error) {
	mode, err := parseInput(req.Text, req.Mode)
	if err != nil {
		return nil, err
	}

	var cards []ai.Flashcard
	err = s.limiter.Do(ctx, userID, "study_flashcards", func() error {
		cards = s.gateway.Flashcards(ctx, req.Text, mode)
		return nil
	})
	return cards, err
}

func (s *studyService) Quiz(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) ([]ai.QuizQuestion, error) {
	mode, err := parseInput(req.Text, req.Mode)
	if err != nil {
		return nil, err
	}

	var questions []ai.QuizQuestion
	err = s.limiter.Do(ctx, userID, "study_quiz", func() error {
		questions = s.gateway.Quiz(ctx, req.Text, mode)
		return nil
	})
	return questions, err
}

func (s *studyService) RelatedTopics(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) ([]ai.RelatedTopic, error) {
	mode, err := parseInput(req.Text, req.Mode)
	if err != nil {
		return nil, err
	}

	var topics []ai.RelatedTopic
	err = s.limiter.Do(ctx, userID, "study_related_topics", func() error {
		topics = s.gateway.RelatedTopics(ctx, req.Text, mode)
		return nil
	})
	return topics, err
}

func (s *studyService) Toolkit(ctx context.Context, userID uuid.UUID, req dto.StudyTextRequest) (*dto.ToolkitResponse, error) {
	mode, err := parseInput(req.Text, req.Mode)
	if err != nil {
		return nil, err
	}

	out := &dto.ToolkitResponse{}
	err = s.limiter.Do(ctx, userID, "study_toolkit", func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			res := s.gateway.Summary(gctx, req.Text, mode)
			out.Summary, out.Degraded = res.Text, res.Degraded
			return nil
		})
		g.Go(func() error {
			out.Flashcards = s.gateway.Flashcards(gctx, req.Text, mode)
			return nil
		})
		g.Go(func() error {
			out.Quiz = s.gateway.Quiz(gctx, req.Text, mode)
			return nil
		})
		g.Go(func() error {
			out.RelatedTopics = s.gateway.RelatedTopics(gctx, req.Text, mode)
			return nil
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	// failed list generators come back empty
	if len(out.Flashcards) == 0 || len(out.Quiz) == 0 || len(out.RelatedTopics) == 0 {
		out.Degraded = true
	}
	return out, nil
}

func fileKind(f *upload.File) dto.FileKind {
	switch {
	case f.Is("image/*"):
		return dto.FileImage
	case f.Is("application/pdf"):
		return dto.FilePDF
	case f.Is("video/*"):
		return dto.FileVideo
	}
	return dto.FileOther
}

func (s *studyService) Extract(ctx context.Context, userID uuid.UUID, file *upload.File) (*dto.ExtractResponse, error) {
	if err := file.Require(DocumentTypes...); err != nil {
		return nil, err
	}

	kind := fileKind(file)
	blob := ai.Blob{MIMEType: file.MIMEType(), Data: file.Data}

	var res ai.TextResult
	err := s.limiter.Do(ctx, userID, "study_extract", func() error {
		if kind == dto.FileImage {
			res = s.gateway.ExtractImageText(ctx, blob)
		} else {
			res = s.gateway.ExtractFileText(ctx, blob)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("document extracted", "user_id", userID, "mime", blob.MIMEType, "bytes", len(file.Data), "degraded", res.Degraded)
	return &dto.ExtractResponse{
		Title:    file.Title(),
		Text:     res.Text,
		MIMEType: blob.MIMEType,
		Kind:     kind,
		Degraded: res.Degraded,
	}, nil
}

func (s *studyService) OpenSession(ctx context.Context, userID uuid.UUID, req dto.StudySessionRequest) (*dto.StudySessionResponse, error) {
	mode, err := parseInput(req.Document, req.Mode)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultSessionTitle
	}
	return s.conversations.Start(ctx, userID, title, mode, ai.StudyPersona(req.Document), "")
}

func (s *studyService) Expand(ctx context.Context, userID uuid.UUID, req dto.ExpandRequest) (*dto.ExpandResponse, error) {
	mode, err := parseInput(req.Document, req.Mode)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Topic.Title) == "" {
		return nil, fmt.Errorf("topic title must not be blank: %w", apperror.ErrBadRequest)
	}

	var res ai.TextResult
	err = s.limiter.Do(ctx, userID, "study_expand", func() error {
		session := s.gateway.NewSession(mode, ai.StudyPersona(req.Document))
		res = session.Send(ctx, ai.ExpandTopicPrompt(req.Topic))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// a failed expansion leaves the document as it was
	if res.Degraded {
		return &dto.ExpandResponse{Section: res.Text, Document: req.Document, Sources: res.Sources, Degraded: true}, nil
	}

	section := ai.ExpandedSection(req.Topic.Title, res.Text)
	return &dto.ExpandResponse{
		Section:  section,
		Document: req.Document + section,
		Sources:  res.Sources,
	}, nil
}
