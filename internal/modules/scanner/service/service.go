package service

import (
	"bytes"
	"context"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/modules/scanner/dto"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/ratelimiter"
	"anoa.com/eduainexus/pkg/storage"
	"anoa.com/eduainexus/pkg/upload"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const scanDir = "/scans"

type ScannerService interface {
	// Scan reads the text in an image and suggests prompts for it. The image is
	// archived alongside when storage is configured.
	Scan(ctx context.Context, userID uuid.UUID, image *upload.File) (*dto.ScanResponse, error)
}

type scannerService struct {
	gateway ai.Gateway
	images  storage.ImageStorage
	folder  string
	limiter *ratelimiter.Limiter
	log     *logger.Logger
}

func NewScannerService(gateway ai.Gateway, images storage.ImageStorage, folder string, limiter *ratelimiter.Limiter, log *logger.Logger) ScannerService {
	if log == nil {
		log = logger.Nop()
	}
	return &scannerService{
		gateway: gateway,
		images:  images,
		folder:  folder,
		limiter: limiter,
		log:     log.With("component", "scanner"),
	}
}

func (s *scannerService) Scan(ctx context.Context, userID uuid.UUID, image *upload.File) (*dto.ScanResponse, error) {
	if err := image.Require("image/*"); err != nil {
		return nil, err
	}

	out := &dto.ScanResponse{}
	err := s.limiter.Do(ctx, userID, "scan", func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			ocr := s.gateway.ExtractImageText(gctx, ai.Blob{MIMEType: image.MIMEType(), Data: image.Data})
			out.Text, out.Degraded = ocr.Text, ocr.Degraded
			if !ocr.Degraded {
				out.Analysis = s.gateway.Analyze(gctx, ocr.Text)
			}
			return nil
		})
		if s.images != nil {
			g.Go(func() error {
				url, err := s.images.UploadImage(gctx, bytes.NewReader(image.Data), s.folder+scanDir, image.Name)
				if err != nil {
					s.log.Warn("scan archive failed", "user_id", userID, "error", err)
					return nil
				}
				out.ImageURL = url
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
