package types

// ------------------------------
// Response Types
// ------------------------------

// ListDecksResponse wraps the deck list endpoint response.
type ListDecksResponse struct {
	Decks []Deck `json:"decks"`
	Count int    `json:"count"`
}

// ListFlashcardsResponse wraps the flashcard list endpoint response.
type ListFlashcardsResponse struct {
	Flashcards []Flashcard `json:"flashcards"`
	Count      int         `json:"count"`
}

// BulkCreateFlashcardsResponse carries the server-assigned entities for a
// bulk save, in request order where the backend preserves it.
type BulkCreateFlashcardsResponse struct {
	Flashcards []Flashcard `json:"flashcards"`
	Count      int         `json:"count"`
}

// CurrentUserResponse mirrors the /api/users/me envelope.
type CurrentUserResponse struct {
	Data User `json:"data"`
}

// ChatChoice is one completion choice returned by the generation endpoint.
type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// ChatCompletionResponse is the body returned by the generation endpoint.
// Only the first choice's message content is consumed.
type ChatCompletionResponse struct {
	Choices []ChatChoice `json:"choices"`
}
