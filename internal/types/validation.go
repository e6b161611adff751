package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/flashnest/flashnest-go/internal/shardqueue"
)

// ------------------------------
// Shared Interfaces
// ------------------------------

// Executor interface for dependency injection (used by the cache layer).
type Executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Barrier(context.Context, string) error
}

// HTTPClient interface for dependency injection.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound is returned when the backend reports a deck or flashcard as absent.
var ErrNotFound = errors.New("resource not found")

// ErrNoSession is returned by cache operations before a user session is set.
var ErrNoSession = errors.New("no active user session")

// ErrInvalidInput is returned when a generation request carries no topic,
// text, or file content.
var ErrInvalidInput = errors.New("provide a topic, text, or file")

// ErrInvalidCount is returned when the requested flashcard count is outside [1,50].
var ErrInvalidCount = errors.New("count must be between 1 and 50")

// ErrNoCandidates is returned when a save is attempted with no savable candidates.
var ErrNoCandidates = errors.New("no flashcards selected")

// ------------------------------
// Validation
// ------------------------------

const (
	maxDeckTitleLen       = 100
	maxDeckDescriptionLen = 500
)

// ValidateIDPresent fails when a required identifier is empty.
func ValidateIDPresent(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateDeckTitle enforces the non-empty, max-length title invariant.
func ValidateDeckTitle(title string) error {
	t := strings.TrimSpace(title)
	if t == "" {
		return fmt.Errorf("deck title is required")
	}
	if utf8.RuneCountInString(t) > maxDeckTitleLen {
		return fmt.Errorf("deck title exceeds %d characters", maxDeckTitleLen)
	}
	return nil
}

// ValidateDeckDescription enforces the max-length description invariant.
func ValidateDeckDescription(desc string) error {
	if utf8.RuneCountInString(strings.TrimSpace(desc)) > maxDeckDescriptionLen {
		return fmt.Errorf("deck description exceeds %d characters", maxDeckDescriptionLen)
	}
	return nil
}

// ValidateFlashcard enforces the non-empty question/answer invariant for
// cards about to be persisted.
func ValidateFlashcard(question, answer string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("flashcard question is required")
	}
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("flashcard answer is required")
	}
	return nil
}
