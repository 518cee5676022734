package handler

import (
	"fmt"
	"net/http"

	"anoa.com/eduainexus/internal/modules/study/dto"
	"anoa.com/eduainexus/internal/modules/study/service"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/response"
	"anoa.com/eduainexus/pkg/upload"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StudyHandler struct {
	studyService     service.StudyService
	maxDocumentBytes int64
}

func NewStudyHandler(studyService service.StudyService, maxDocumentBytes int64) *StudyHandler {
	return &StudyHandler{studyService: studyService, maxDocumentBytes: maxDocumentBytes}
}

func bindText(c *gin.Context) (uuid.UUID, dto.StudyTextRequest, bool) {
	var req dto.StudyTextRequest
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return uuid.Nil, req, false
	}
	return userID, req, true
}

func (h *StudyHandler) Summary(c *gin.Context) {
	userID, req, ok := bindText(c)
	if !ok {
		return
	}

	res, err := h.studyService.Summary(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *StudyHandler) Flashcards(c *gin.Context) {
	userID, req, ok := bindText(c)
	if !ok {
		return
	}

	cards, err := h.studyService.Flashcards(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cards})
}

func (h *StudyHandler) Quiz(c *gin.Context) {
	userID, req, ok := bindText(c)
	if !ok {
		return
	}

	questions, err := h.studyService.Quiz(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": questions})
}

func (h *StudyHandler) RelatedTopics(c *gin.Context) {
	userID, req, ok := bindText(c)
	if !ok {
		return
	}

	topics, err := h.studyService.RelatedTopics(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": topics})
}

func (h *StudyHandler) Toolkit(c *gin.Context) {
	userID, req, ok := bindText(c)
	if !ok {
		return
	}

	res, err := h.studyService.Toolkit(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *StudyHandler) Extract(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, fmt.Errorf("file is required: %w", apperror.ErrBadRequest))
		return
	}

	file, err := upload.Read(fileHeader, h.maxDocumentBytes)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studyService.Extract(c.Request.Context(), userID, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *StudyHandler) OpenSession(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.StudySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	res, err := h.studyService.OpenSession(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": res})
}

func (h *StudyHandler) Expand(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	res, err := h.studyService.Expand(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
