package handler

import (
	"net/http"

	"anoa.com/eduainexus/internal/modules/prompt/dto"
	"anoa.com/eduainexus/internal/modules/prompt/service"
	"anoa.com/eduainexus/pkg/response"
	"github.com/gin-gonic/gin"
)

type PromptHandler struct {
	promptService service.PromptService
}

func NewPromptHandler(promptService service.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

func (h *PromptHandler) ListPrompts(c *gin.Context) {
	var filter dto.PromptFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err)
		return
	}

	prompts, err := h.promptService.List(c.Request.Context(), response.OptionalUserID(c), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prompts})
}

func (h *PromptHandler) GetCategories(c *gin.Context) {
	categories, err := h.promptService.Categories(c.Request.Context(), response.OptionalUserID(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *PromptHandler) GetPrompt(c *gin.Context) {
	prompt, err := h.promptService.Get(c.Request.Context(), response.OptionalUserID(c), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prompt})
}

func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	prompt, err := h.promptService.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Đã lưu prompt thành công!", "data": prompt})
}

func (h *PromptHandler) UpdatePrompt(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	prompt, err := h.promptService.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật thành công!", "data": prompt})
}

func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.promptService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa prompt thành công."})
}

func (h *PromptHandler) ToggleLike(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.promptService.ToggleLike(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *PromptHandler) QuickTest(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.QuickTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	res, err := h.promptService.QuickTest(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *PromptHandler) SmartPrompt(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SmartPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	res, err := h.promptService.SmartPrompt(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *PromptHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": h.promptService.Preview(req)})
}

func (h *PromptHandler) Illustrate(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.promptService.Illustrate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
