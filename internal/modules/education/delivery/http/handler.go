package handler

import (
	"net/http"

	"anoa.com/eduainexus/internal/modules/education/service"
	"github.com/gin-gonic/gin"
)

type EducationHandler struct {
	educationService service.EducationService
}

func NewEducationHandler(educationService service.EducationService) *EducationHandler {
	return &EducationHandler{educationService: educationService}
}

func (h *EducationHandler) GetGuide(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.educationService.Guide()})
}
