package handler

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/eduainexus/internal/modules/scanner/service"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/response"
	"anoa.com/eduainexus/pkg/upload"
	"github.com/gin-gonic/gin"
)

type ScannerHandler struct {
	scannerService service.ScannerService
	maxImageBytes  int64
}

func NewScannerHandler(scannerService service.ScannerService, maxImageBytes int64) *ScannerHandler {
	return &ScannerHandler{scannerService: scannerService, maxImageBytes: maxImageBytes}
}

func (h *ScannerHandler) Scan(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.ResponseError(c, fmt.Errorf("image is required: %w", apperror.ErrBadRequest))
		return
	}

	image, err := upload.Read(fileHeader, h.maxImageBytes)
	if err != nil {
		if errors.Is(err, apperror.ErrPayloadTooLarge) {
			err = apperror.New(http.StatusRequestEntityTooLarge, fmt.Sprintf("File ảnh quá lớn (giới hạn %dMB).", h.maxImageBytes>>20), err)
		}
		response.ResponseError(c, err)
		return
	}

	res, err := h.scannerService.Scan(c.Request.Context(), userID, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
