package ai

import "google.golang.org/genai"

var flashcardSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"front": {Type: genai.TypeString},
			"back":  {Type: genai.TypeString},
		},
		Required: []string{"front", "back"},
	},
}

var quizSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question":           {Type: genai.TypeString},
			"options":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"correctAnswerIndex": {Type: genai.TypeInteger},
			"explanation": {
				Type:        genai.TypeString,
				Description: "Giải thích ngắn gọn tại sao đáp án này đúng.",
			},
		},
		Required: []string{"question", "options", "correctAnswerIndex", "explanation"},
	},
}

var relatedTopicSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"description": {
				Type:        genai.TypeString,
				Description: "Mô tả ngắn về chủ đề này và nội dung sẽ học.",
			},
			"relevance": {
				Type:        genai.TypeString,
				Description: "Tại sao chủ đề này liên quan?",
			},
		},
		Required: []string{"title", "description", "relevance"},
	},
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type":    {Type: genai.TypeString, Enum: []string{"PROBLEM", "CONTENT", "OTHER"}},
		"summary": {Type: genai.TypeString},
		"suggestions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":          {Type: genai.TypeString},
					"description":    {Type: genai.TypeString},
					"promptTemplate": {Type: genai.TypeString},
					"icon":           {Type: genai.TypeString},
				},
				Required: []string{"title", "description", "promptTemplate", "icon"},
			},
		},
	},
	Required: []string{"type", "summary", "suggestions"},
}
