package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/flashnest/flashnest-go/internal/api"
	"github.com/flashnest/flashnest-go/internal/types"
)

// bumpListCount shifts a deck's denormalized flashcard count in the
// cached deck list, clamping at zero, and reports the change actually
// applied so a rollback can undo exactly that much and no more.
func bumpListCount(s *Store, deckID string, delta int) int {
	applied := 0
	s.update(DecksKey(), func(cur any) (any, bool) {
		decks, ok := cur.([]types.Deck)
		if !ok {
			return nil, false
		}
		next := types.CloneDecks(decks)
		for i := range next {
			if next[i].ID == deckID {
				old := next[i].FlashcardsCount
				next[i].FlashcardsCount += delta
				if next[i].FlashcardsCount < 0 {
					next[i].FlashcardsCount = 0
				}
				applied = next[i].FlashcardsCount - old
			}
		}
		return next, true
	})
	return applied
}

// bumpDeckCount shifts the count in the single-deck entry, clamping at zero.
func bumpDeckCount(s *Store, deckID string, delta int) {
	s.update(DeckKey(deckID), func(cur any) (any, bool) {
		deck, ok := cur.(types.Deck)
		if !ok {
			return nil, false
		}
		deck.FlashcardsCount += delta
		if deck.FlashcardsCount < 0 {
			deck.FlashcardsCount = 0
		}
		return deck, true
	})
}

// deckOwnedKeys is the snapshot set for a flashcard write: the keys only
// this deck's shard edits. The deck list is shared with mutations on other
// shards, so its count edit is rolled back with an inverse bump rather
// than a wholesale restore.
func deckOwnedKeys(deckID string) []Key {
	return []Key{FlashcardsKey(deckID), DeckKey(deckID)}
}

// deckRefreshKeys marks every key a flashcard write can leave stale.
func deckRefreshKeys(deckID string) []Key {
	return []Key{FlashcardsKey(deckID), DeckKey(deckID), DecksKey()}
}

// CreateFlashcard adds a single card to a deck. The card shows up in the
// cached list under a "temp-" ID and the deck's count ticks up before the
// backend confirms.
func (c *Cache) CreateFlashcard(ctx context.Context, deckID, question, answer string) (*types.Flashcard, error) {
	if err := types.ValidateIDPresent(deckID, "deck id"); err != nil {
		return nil, err
	}
	if err := types.ValidateFlashcard(question, answer); err != nil {
		return nil, err
	}
	user, err := c.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	tempID := "temp-" + uuid.NewString()
	now := c.clock()
	var created *types.Flashcard
	var listDelta int
	m := mutation{
		op:       "create_flashcard",
		shardKey: deckID,
		snapshot: deckOwnedKeys(deckID),
		apply: func(s *Store) {
			s.update(FlashcardsKey(deckID), func(cur any) (any, bool) {
				cards, ok := cur.([]types.Flashcard)
				if !ok {
					return nil, false
				}
				next := types.CloneFlashcards(cards)
				return append(next, types.Flashcard{
					ID:        tempID,
					DeckID:    deckID,
					Question:  question,
					Answer:    answer,
					CreatedAt: now,
					UpdatedAt: now,
				}), true
			})
			listDelta = bumpListCount(s, deckID, 1)
			bumpDeckCount(s, deckID, 1)
		},
		revert: func(s *Store) {
			bumpListCount(s, deckID, -listDelta)
		},
		shared: []Key{DecksKey()},
		commit: func(jobCtx context.Context) (func(*Store), error) {
			card, err := api.CreateFlashcard(jobCtx, c.http, c.baseURL, deckID, types.CreateFlashcardRequest{
				UserID:   user.ID,
				Question: question,
				Answer:   answer,
			})
			if err != nil {
				return nil, err
			}
			created = card
			return func(s *Store) {
				s.update(FlashcardsKey(deckID), func(cur any) (any, bool) {
					cards, ok := cur.([]types.Flashcard)
					if !ok {
						return nil, false
					}
					next := make([]types.Flashcard, 0, len(cards))
					for _, f := range cards {
						if f.ID != tempID {
							next = append(next, f)
						}
					}
					return append(next, *card), true
				})
			}, nil
		},
		refresh: deckRefreshKeys(deckID),
	}
	if err := c.run(ctx, m); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateFlashcardsBulk persists a batch of generated cards in one request.
// Unsavable candidates are rejected up front. Temporary entries carry
// "temp-bulk-" IDs; on confirmation each is matched to its server row by
// question and answer, since the backend assigns IDs and may reorder.
func (c *Cache) CreateFlashcardsBulk(ctx context.Context, deckID string, candidates []types.Candidate) ([]types.Flashcard, error) {
	if err := types.ValidateIDPresent(deckID, "deck id"); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, types.ErrNoCandidates
	}
	for _, cand := range candidates {
		if !cand.Savable() {
			return nil, fmt.Errorf("flashcard %q is missing a question or answer", strings.TrimSpace(cand.Question))
		}
	}
	user, err := c.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	batch := uuid.NewString()
	now := c.clock()
	var saved []types.Flashcard
	var listDelta int
	m := mutation{
		op:       "create_flashcards_bulk",
		shardKey: deckID,
		snapshot: deckOwnedKeys(deckID),
		apply: func(s *Store) {
			s.update(FlashcardsKey(deckID), func(cur any) (any, bool) {
				cards, ok := cur.([]types.Flashcard)
				if !ok {
					return nil, false
				}
				next := types.CloneFlashcards(cards)
				for i, cand := range candidates {
					next = append(next, types.Flashcard{
						ID:        fmt.Sprintf("temp-bulk-%s-%d", batch, i),
						DeckID:    deckID,
						Question:  cand.Question,
						Answer:    cand.Answer,
						CreatedAt: now,
						UpdatedAt: now,
					})
				}
				return next, true
			})
			listDelta = bumpListCount(s, deckID, len(candidates))
			bumpDeckCount(s, deckID, len(candidates))
		},
		revert: func(s *Store) {
			bumpListCount(s, deckID, -listDelta)
		},
		shared: []Key{DecksKey()},
		commit: func(jobCtx context.Context) (func(*Store), error) {
			cards, err := api.AddBulkFlashcards(jobCtx, c.http, c.baseURL, deckID, types.BulkCreateFlashcardsRequest{
				UserID:     user.ID,
				Flashcards: candidates,
			})
			if err != nil {
				return nil, err
			}
			saved = cards
			return func(s *Store) {
				s.update(FlashcardsKey(deckID), func(cur any) (any, bool) {
					current, ok := cur.([]types.Flashcard)
					if !ok {
						return nil, false
					}
					return reconcileBulk(current, batch, cards), true
				})
			}, nil
		},
		refresh: deckRefreshKeys(deckID),
	}
	if err := c.run(ctx, m); err != nil {
		return nil, err
	}
	return saved, nil
}

// reconcileBulk swaps this batch's temporary entries for their server rows.
// Matching is by content because temp IDs never reach the backend. Server
// rows without a temp counterpart are appended; temps without a server row
// are dropped rather than left dangling.
func reconcileBulk(current []types.Flashcard, batch string, server []types.Flashcard) []types.Flashcard {
	prefix := "temp-bulk-" + batch + "-"
	unclaimed := types.CloneFlashcards(server)
	claim := func(q, a string) (types.Flashcard, bool) {
		for i, f := range unclaimed {
			if f.Question == q && f.Answer == a {
				unclaimed = append(unclaimed[:i], unclaimed[i+1:]...)
				return f, true
			}
		}
		return types.Flashcard{}, false
	}

	next := make([]types.Flashcard, 0, len(current))
	for _, f := range current {
		if !strings.HasPrefix(f.ID, prefix) {
			next = append(next, f)
			continue
		}
		if real, ok := claim(f.Question, f.Answer); ok {
			next = append(next, real)
		}
	}
	return append(next, unclaimed...)
}

// UpdateFlashcard edits a card's question and answer in place.
func (c *Cache) UpdateFlashcard(ctx context.Context, deckID, cardID, question, answer string) (*types.Flashcard, error) {
	if err := types.ValidateIDPresent(deckID, "deck id"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(cardID, "flashcard id"); err != nil {
		return nil, err
	}
	if err := types.ValidateFlashcard(question, answer); err != nil {
		return nil, err
	}
	user, err := c.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock()
	var updated *types.Flashcard
	m := mutation{
		op:       "update_flashcard",
		shardKey: deckID,
		snapshot: []Key{FlashcardsKey(deckID)},
		apply: func(s *Store) {
			s.update(FlashcardsKey(deckID), func(cur any) (any, bool) {
				cards, ok := cur.([]types.Flashcard)
				if !ok {
					return nil, false
				}
				next := types.CloneFlashcards(cards)
				for i := range next {
					if next[i].ID == cardID {
						next[i].Question = question
						next[i].Answer = answer
						next[i].UpdatedAt = now
					}
				}
				return next, true
			})
		},
		commit: func(jobCtx context.Context) (func(*Store), error) {
			card, err := api.UpdateFlashcard(jobCtx, c.http, c.baseURL, deckID, cardID, types.UpdateFlashcardRequest{
				UserID:   user.ID,
				Question: question,
				Answer:   answer,
			})
			if err != nil {
				return nil, err
			}
			updated = card
			return func(s *Store) {
				s.update(FlashcardsKey(deckID), func(cur any) (any, bool) {
					cards, ok := cur.([]types.Flashcard)
					if !ok {
						return nil, false
					}
					next := types.CloneFlashcards(cards)
					for i := range next {
						if next[i].ID == cardID {
							next[i] = *card
						}
					}
					return next, true
				})
			}, nil
		},
		refresh: []Key{FlashcardsKey(deckID)},
	}
	if err := c.run(ctx, m); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteFlashcard removes one card and decrements the deck's count.
func (c *Cache) DeleteFlashcard(ctx context.Context, deckID, cardID string) error {
	if err := types.ValidateIDPresent(deckID, "deck id"); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(cardID, "flashcard id"); err != nil {
		return err
	}
	var listDelta int
	m := mutation{
		op:       "delete_flashcard",
		shardKey: deckID,
		snapshot: deckOwnedKeys(deckID),
		apply: func(s *Store) {
			s.update(FlashcardsKey(deckID), func(cur any) (any, bool) {
				cards, ok := cur.([]types.Flashcard)
				if !ok {
					return nil, false
				}
				next := make([]types.Flashcard, 0, len(cards))
				for _, f := range cards {
					if f.ID != cardID {
						next = append(next, f)
					}
				}
				return next, true
			})
			listDelta = bumpListCount(s, deckID, -1)
			bumpDeckCount(s, deckID, -1)
		},
		revert: func(s *Store) {
			bumpListCount(s, deckID, -listDelta)
		},
		shared: []Key{DecksKey()},
		commit: func(jobCtx context.Context) (func(*Store), error) {
			return nil, api.DeleteFlashcard(jobCtx, c.http, c.baseURL, deckID, cardID)
		},
		refresh: deckRefreshKeys(deckID),
	}
	return c.run(ctx, m)
}
