package types

// ------------------------------
// Request Types
// ------------------------------

// CreateDeckRequest holds parameters for a new deck.
type CreateDeckRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateDeckRequest holds editable deck fields.
type UpdateDeckRequest struct {
	UserID      string `json:"user_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CreateFlashcardRequest holds parameters for a single new flashcard.
type CreateFlashcardRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// UpdateFlashcardRequest holds editable flashcard fields.
type UpdateFlashcardRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BulkCreateFlashcardsRequest holds an AI-generated batch destined for one deck.
type BulkCreateFlashcardsRequest struct {
	UserID     string      `json:"user_id"`
	Flashcards []Candidate `json:"flashcards"`
}

// ------------------------------
// Chat-completion wire types (generation endpoint)
// ------------------------------

// ChatMessage is a single message in a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the body POSTed to the generation endpoint.
type ChatCompletionRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}
