package dto

import "anoa.com/eduainexus/internal/ai"

type ScanResponse struct {
	Text     string       `json:"text"`
	Analysis *ai.Analysis `json:"analysis"`
	ImageURL string       `json:"image_url,omitempty"`
	Degraded bool         `json:"degraded,omitempty"`
}
