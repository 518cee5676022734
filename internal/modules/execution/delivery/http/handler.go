package handler

import (
	"net/http"

	"anoa.com/eduainexus/internal/modules/execution/dto"
	"anoa.com/eduainexus/internal/modules/execution/service"
	"anoa.com/eduainexus/pkg/response"
	"github.com/gin-gonic/gin"
)

type ExecutionHandler struct {
	executionService service.ExecutionService
}

func NewExecutionHandler(executionService service.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{executionService: executionService}
}

func (h *ExecutionHandler) Execute(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	res, err := h.executionService.Execute(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": res})
}
