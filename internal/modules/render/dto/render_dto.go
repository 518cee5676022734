package dto

import "anoa.com/eduainexus/internal/typewriter"

type RenderRequest struct {
	Content string `json:"content" binding:"max=200000"`
	// SpeedMS is the tick period; nil means the default, 0 renders at once.
	SpeedMS *int `json:"speed_ms" binding:"omitempty,min=0,max=1000"`
}

type RenderResponse struct {
	HTML  string           `json:"html"`
	State typewriter.State `json:"state"`
}
