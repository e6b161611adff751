package types

import (
	"strings"
	"time"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// User represents the authenticated account the deck cache is scoped to.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Deck is a named collection of flashcards owned by a user.
// FlashcardsCount is denormalized by the backend and adjusted optimistically
// by the cache layer while a mutation is in flight.
type Deck struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	FlashcardsCount int       `json:"flashcards_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Flashcard is a question/answer study unit belonging to a deck.
type Flashcard struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deck_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Candidate is an AI-generated flashcard that has not been persisted yet.
// Malformed candidates are kept so callers can show a placeholder, but they
// must never be offered for save; see Savable.
type Candidate struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Savable reports whether the candidate carries both a non-empty question
// and a non-empty answer after trimming.
func (c Candidate) Savable() bool {
	return strings.TrimSpace(c.Question) != "" && strings.TrimSpace(c.Answer) != ""
}

// ------------------------------
// Deep copies for cache snapshots
// ------------------------------

// CloneDecks returns a deep copy of a cached deck list. Deck has no
// reference fields, so copying the slice is enough.
func CloneDecks(in []Deck) []Deck {
	if in == nil {
		return nil
	}
	out := make([]Deck, len(in))
	copy(out, in)
	return out
}

// CloneFlashcards returns a deep copy of a cached flashcard list,
// including each card's Tags slice.
func CloneFlashcards(in []Flashcard) []Flashcard {
	if in == nil {
		return nil
	}
	out := make([]Flashcard, len(in))
	for i, f := range in {
		out[i] = f
		if f.Tags != nil {
			out[i].Tags = make([]string, len(f.Tags))
			copy(out[i].Tags, f.Tags)
		}
	}
	return out
}
