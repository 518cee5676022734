package handler

import (
	"net/http"
	"time"

	"anoa.com/eduainexus/internal/modules/render/dto"
	"anoa.com/eduainexus/internal/typewriter"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/response"
	"github.com/gin-gonic/gin"
)

type RenderHandler struct {
	renderer *typewriter.Renderer
	log      *logger.Logger
}

func NewRenderHandler(renderer *typewriter.Renderer, log *logger.Logger) *RenderHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RenderHandler{renderer: renderer, log: log}
}

// Render answers with the final HTML at speed 0, otherwise streams typewriter
// frames as server-sent events and ends with a "done" event.
func (h *RenderHandler) Render(c *gin.Context) {
	var req dto.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	speed := typewriter.DefaultSpeed
	if req.SpeedMS != nil {
		speed = time.Duration(*req.SpeedMS) * time.Millisecond
	}

	tw := typewriter.New(speed, h.renderer.Render)
	defer tw.Close()
	tw.SetContent(req.Content)

	if speed <= 0 {
		f := tw.Snapshot()
		c.JSON(http.StatusOK, gin.H{"data": dto.RenderResponse{HTML: f.HTML, State: f.State}})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	err := tw.Run(c.Request.Context(), func(f typewriter.Frame) error {
		c.SSEvent("frame", f)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		h.log.Debug("render stream stopped", "error", err)
		return
	}

	c.SSEvent("done", tw.Snapshot())
	c.Writer.Flush()
}
