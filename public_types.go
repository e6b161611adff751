package flashnest

import (
	"github.com/flashnest/flashnest-go/internal/aigen"
	"github.com/flashnest/flashnest-go/internal/types"
)

// Public type aliases so SDK consumers can import only the flashnest package.
type (
	// Domain entities
	User      = types.User
	Deck      = types.Deck
	Flashcard = types.Flashcard

	// Candidate is an AI-generated flashcard awaiting review; see Savable.
	Candidate = types.Candidate

	// GenerateRequest is the input to the generation pipeline. Precedence
	// when several fields are set: Topic, then FileContent, then Text.
	GenerateRequest = aigen.Request
)

// Errors re-exported in errors.go
