package aigen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/flashnest/flashnest-go/internal/types"
)

// ParseError reports that a model reply could not be recovered into a
// flashcard array. Raw carries the original text for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("generation response not parseable: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var fencePattern = regexp.MustCompile("```(?:json)?")

// Parse recovers an ordered list of candidates from raw model output.
//
// It strips Markdown code fences, tries the cleaned text as a JSON array,
// and falls back to the first '['..last ']' substring when the model wrapped
// the array in prose. Candidates with a missing question or answer are kept
// (callers render a placeholder) but report Savable() == false.
func Parse(raw string) ([]types.Candidate, error) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))

	var cards []types.Candidate
	err := json.Unmarshal([]byte(cleaned), &cards)
	if err != nil {
		start := strings.Index(cleaned, "[")
		end := strings.LastIndex(cleaned, "]")
		if start >= 0 && end > start {
			err = json.Unmarshal([]byte(cleaned[start:end+1]), &cards)
		}
	}
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if len(cards) == 0 {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("no flashcards in response")}
	}
	return cards, nil
}
