package flashnest

import (
	"context"
	"fmt"
	"sync"
)

// AISession holds the review state between generating flashcards and
// saving them: the current candidate list, whether a generation is in
// flight, and the last error. Starting a preview clears the previous
// list and error, and concurrent previews follow latest-wins semantics:
// only the newest request's outcome is applied to the session, so a slow
// early response can never clobber a fast later one.
type AISession struct {
	client *Client

	mu         sync.Mutex
	seq        uint64 // newest preview issued; only its outcome is applied
	pending    int
	candidates []Candidate
	err        error
}

// NewAISession starts an empty generation session.
func (c *Client) NewAISession() *AISession {
	return &AISession{client: c}
}

// Preview starts a fresh generation: the previous candidate list and
// error are dropped before the request goes out, so nothing stale is
// visible while the preview is loading and a failed preview leaves the
// list empty with only the error recorded. If this is still the newest
// preview when the pipeline finishes, its result is installed. The
// result is also returned directly; a stale preview's result is returned
// to its caller but leaves session state untouched.
func (s *AISession) Preview(ctx context.Context, req GenerateRequest) ([]Candidate, error) {
	s.mu.Lock()
	s.seq++
	my := s.seq
	s.pending++
	s.candidates = nil
	s.err = nil
	s.mu.Unlock()

	cands, err := s.client.GenerateFlashcards(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if my == s.seq {
		if err != nil {
			s.err = err
		} else {
			s.candidates = append([]Candidate(nil), cands...)
			s.err = nil
		}
	}
	return cands, err
}

// Save persists every savable candidate to deckID in one bulk request and
// clears the session on success. Failures are both returned and recorded
// in the session's error state.
func (s *AISession) Save(ctx context.Context, deckID string) ([]Flashcard, error) {
	s.mu.Lock()
	var savable []Candidate
	for _, cand := range s.candidates {
		if cand.Savable() {
			savable = append(savable, cand)
		}
	}
	s.mu.Unlock()

	if len(savable) == 0 {
		return nil, s.fail(ErrNoCandidates)
	}
	cards, err := s.client.CreateFlashcards(ctx, deckID, savable)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	s.candidates = nil
	s.err = nil
	s.mu.Unlock()
	return cards, nil
}

// SaveOne persists the i-th candidate to deckID and removes it from the
// session on success, leaving the rest of the list for further review.
func (s *AISession) SaveOne(ctx context.Context, deckID string, i int) (*Flashcard, error) {
	s.mu.Lock()
	if i < 0 || i >= len(s.candidates) {
		s.mu.Unlock()
		return nil, fmt.Errorf("no candidate at index %d", i)
	}
	cand := s.candidates[i]
	s.mu.Unlock()

	if !cand.Savable() {
		return nil, s.fail(ErrNoCandidates)
	}
	card, err := s.client.CreateFlashcard(ctx, deckID, cand.Question, cand.Answer)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	// Re-locate by content: the list may have shifted while saving.
	for j, c := range s.candidates {
		if c == cand {
			s.candidates = append(s.candidates[:j], s.candidates[j+1:]...)
			break
		}
	}
	s.err = nil
	s.mu.Unlock()
	return card, nil
}

// Candidates returns a copy of the current candidate list.
func (s *AISession) Candidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Candidate(nil), s.candidates...)
}

// IsLoading reports whether any preview is still in flight.
func (s *AISession) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Err returns the session's recorded error, if any.
func (s *AISession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError resets the session's error state.
func (s *AISession) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

func (s *AISession) fail(err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return err
}
