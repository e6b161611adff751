// Package aigen turns user input into a generation prompt and recovers
// flashcard candidates from the model's reply.
package aigen

import (
	"fmt"
	"strings"

	"github.com/flashnest/flashnest-go/internal/types"
	"github.com/flashnest/flashnest-go/prompts"
)

const (
	// MinCount and MaxCount bound the number of flashcards per request.
	MinCount = 1
	MaxCount = 50

	// DefaultCount is used when the caller leaves Count at zero.
	DefaultCount = 10
)

// Request holds the user-supplied generation input. Exactly one of Topic,
// FileContent, or Text drives the prompt; when several are present the
// precedence is Topic, then FileContent, then Text. An explicit topic is
// the user's most deliberate signal, and an attached document outranks
// whatever happens to sit in the paste buffer.
type Request struct {
	Topic       string
	Text        string
	FileContent string
	Count       int
}

// BuildPrompt composes the user prompt for the generation endpoint.
// It returns types.ErrInvalidInput when no input is present and
// types.ErrInvalidCount when Count falls outside [MinCount, MaxCount].
// Pure function of its inputs.
func BuildPrompt(req Request) (string, error) {
	count := req.Count
	if count == 0 {
		count = DefaultCount
	}
	if count < MinCount || count > MaxCount {
		return "", types.ErrInvalidCount
	}

	var b strings.Builder
	switch {
	case strings.TrimSpace(req.Topic) != "":
		fmt.Fprintf(&b, "Generate %d flashcards on %q.", count, strings.TrimSpace(req.Topic))
	case strings.TrimSpace(req.FileContent) != "":
		fmt.Fprintf(&b, "Generate %d flashcards from this document:\n\n%s", count, req.FileContent)
	case strings.TrimSpace(req.Text) != "":
		fmt.Fprintf(&b, "Generate %d flashcards from the following:\n\n%s", count, req.Text)
	default:
		return "", types.ErrInvalidInput
	}

	b.WriteString("\n\n")
	b.WriteString(prompts.FormatRules())
	return b.String(), nil
}
