package ai

type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// TextResult is what every text-producing call returns. Degraded is set when
// Text is a fallback message rather than model output.
type TextResult struct {
	Text     string   `json:"text"`
	Sources  []Source `json:"sources"`
	Degraded bool     `json:"degraded,omitempty"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role    Role     `json:"role"`
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type QuizQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

type RelatedTopic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Relevance   string `json:"relevance"`
}

type ContentType string

const (
	ContentProblem ContentType = "PROBLEM"
	ContentContent ContentType = "CONTENT"
	ContentOther   ContentType = "OTHER"
)

type Suggestion struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	PromptTemplate string `json:"promptTemplate"`
	Icon           string `json:"icon"`
}

type Analysis struct {
	Type        ContentType  `json:"type"`
	Summary     string       `json:"summary"`
	Suggestions []Suggestion `json:"suggestions"`
}

type Blob struct {
	MIMEType string
	Data     []byte
}
