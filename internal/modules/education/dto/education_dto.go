package dto

type AIModelInfo struct {
	Name        string   `json:"name"`
	Provider    string   `json:"provider"`
	Description string   `json:"description"`
	Strengths   []string `json:"strengths"`
	Icon        string   `json:"icon"`
}

type EthicsItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type EducationResponse struct {
	Models []AIModelInfo `json:"models"`
	Ethics []EthicsItem  `json:"ethics"`
}
