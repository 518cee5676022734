package dto

// ExecutionRequest comes from "use this prompt" in the library. Mode defaults to THINKING.
type ExecutionRequest struct {
	Title       string            `json:"title" binding:"required,max=255"`
	Description string            `json:"description"`
	Content     string            `json:"content" binding:"required"`
	Variables   map[string]string `json:"variables"`
	Mode        string            `json:"mode" binding:"omitempty,oneof=FAST THINKING fast thinking"`
}
