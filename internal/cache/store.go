package cache

import (
	"sync"
	"time"

	"github.com/flashnest/flashnest-go/internal/types"
)

// entry is one cached value plus the time it was last confirmed by the
// backend. Optimistic edits keep the old fetchedAt so the entry stays
// eligible for revalidation.
type entry struct {
	value     any
	fetchedAt time.Time
}

// Store holds cached deck and flashcard collections. Every value crossing
// the Store boundary is deep-copied in both directions so callers and
// snapshots can never alias live cache state.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]entry
	clock   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Key]entry), clock: time.Now}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []types.Deck:
		return types.CloneDecks(t)
	case types.Deck:
		return t
	case []types.Flashcard:
		return types.CloneFlashcards(t)
	default:
		return v
	}
}

// GetDecks returns the cached deck list, its fetch time, and whether it is present.
func (s *Store) GetDecks() ([]types.Deck, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[DecksKey()]
	if !ok {
		return nil, time.Time{}, false
	}
	return types.CloneDecks(e.value.([]types.Deck)), e.fetchedAt, true
}

// SetDecks stores a freshly fetched deck list.
func (s *Store) SetDecks(decks []types.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[DecksKey()] = entry{value: types.CloneDecks(decks), fetchedAt: s.clock()}
}

// GetDeck returns a single cached deck.
func (s *Store) GetDeck(deckID string) (*types.Deck, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[DeckKey(deckID)]
	if !ok {
		return nil, time.Time{}, false
	}
	d := e.value.(types.Deck)
	return &d, e.fetchedAt, true
}

// SetDeck stores a freshly fetched deck.
func (s *Store) SetDeck(deck types.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[DeckKey(deck.ID)] = entry{value: deck, fetchedAt: s.clock()}
}

// GetFlashcards returns a deck's cached flashcard list.
func (s *Store) GetFlashcards(deckID string) ([]types.Flashcard, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[FlashcardsKey(deckID)]
	if !ok {
		return nil, time.Time{}, false
	}
	return types.CloneFlashcards(e.value.([]types.Flashcard)), e.fetchedAt, true
}

// SetFlashcards stores a freshly fetched flashcard list for a deck.
func (s *Store) SetFlashcards(deckID string, cards []types.Flashcard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[FlashcardsKey(deckID)] = entry{value: types.CloneFlashcards(cards), fetchedAt: s.clock()}
}

// Delete removes keys from the cache entirely. Used by cascade deletes:
// a removed deck's entries must be gone, not empty.
func (s *Store) Delete(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
}

// MarkStale zeroes the fetch time of keys so the next read revalidates.
func (s *Store) MarkStale(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if e, ok := s.entries[k]; ok {
			e.fetchedAt = time.Time{}
			s.entries[k] = e
		}
	}
}

// Clear drops every entry. Called on session change and sign-out.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]entry)
}

// snapEntry records the exact pre-mutation state of one key, including
// whether the key existed at all.
type snapEntry struct {
	present   bool
	value     any
	fetchedAt time.Time
}

// Snapshot captures the listed keys for a later Restore. Absent keys are
// recorded as absent so Restore can re-delete entries a mutation created.
type Snapshot map[Key]snapEntry

// Snapshot deep-copies the current state of keys.
func (s *Store) Snapshot(keys ...Key) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(keys))
	for _, k := range keys {
		e, ok := s.entries[k]
		if !ok {
			snap[k] = snapEntry{present: false}
			continue
		}
		snap[k] = snapEntry{present: true, value: cloneValue(e.value), fetchedAt: e.fetchedAt}
	}
	return snap
}

// Restore puts every snapshotted key back exactly as captured.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, se := range snap {
		if !se.present {
			delete(s.entries, k)
			continue
		}
		s.entries[k] = entry{value: cloneValue(se.value), fetchedAt: se.fetchedAt}
	}
}

// update edits one cached value in place under the write lock. The edit
// callback receives the current value (or nil if absent) and returns the
// replacement; returning ok=false leaves the entry untouched. fetchedAt is
// preserved: an optimistic edit is not a server confirmation.
func (s *Store) update(k Key, edit func(cur any) (any, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.entries[k]
	var cur any
	if exists {
		cur = e.value
	}
	next, ok := edit(cur)
	if !ok {
		return
	}
	s.entries[k] = entry{value: next, fetchedAt: e.fetchedAt}
}
