package domain

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatReply carries the assistant's response plus the risk scan that shaped it.
type ChatReply struct {
	Reply      string   `json:"reply"`
	Severity   string   `json:"severity"`
	Categories []string `json:"categories,omitempty"`
}

// Suggestion is one block of wellness advice derived from session state.
type Suggestion struct {
	Type        string   `json:"type"` // urgent | mental | physical | maintenance | general
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}
