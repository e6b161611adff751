package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/flashnest/flashnest-go/internal/api"
	"github.com/flashnest/flashnest-go/internal/types"
)

// CreateDeck creates a deck for the signed-in user. A temporary entry with
// a "temp-" ID appears in the cached deck list immediately and is swapped
// for the server row once the backend confirms.
func (c *Cache) CreateDeck(ctx context.Context, title, description string) (*types.Deck, error) {
	if err := types.ValidateDeckTitle(title); err != nil {
		return nil, err
	}
	if err := types.ValidateDeckDescription(description); err != nil {
		return nil, err
	}
	user, err := c.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	tempID := "temp-" + uuid.NewString()
	now := c.clock()
	var created *types.Deck
	m := mutation{
		op:       "create_deck",
		shardKey: string(DecksKey()),
		apply: func(s *Store) {
			s.update(DecksKey(), func(cur any) (any, bool) {
				decks, ok := cur.([]types.Deck)
				if !ok {
					// Deck list never fetched; nothing to edit optimistically.
					return nil, false
				}
				next := types.CloneDecks(decks)
				return append(next, types.Deck{
					ID:          tempID,
					UserID:      user.ID,
					Title:       title,
					Description: description,
					CreatedAt:   now,
					UpdatedAt:   now,
				}), true
			})
		},
		revert: func(s *Store) {
			s.update(DecksKey(), func(cur any) (any, bool) {
				decks, ok := cur.([]types.Deck)
				if !ok {
					return nil, false
				}
				next := make([]types.Deck, 0, len(decks))
				for _, d := range decks {
					if d.ID != tempID {
						next = append(next, d)
					}
				}
				return next, true
			})
		},
		shared: []Key{DecksKey()},
		commit: func(jobCtx context.Context) (func(*Store), error) {
			deck, err := api.CreateDeck(jobCtx, c.http, c.baseURL, types.CreateDeckRequest{
				UserID:      user.ID,
				Title:       title,
				Description: description,
			})
			if err != nil {
				return nil, err
			}
			created = deck
			return func(s *Store) {
				s.update(DecksKey(), func(cur any) (any, bool) {
					decks, ok := cur.([]types.Deck)
					if !ok {
						return nil, false
					}
					next := types.CloneDecks(decks)
					for i := range next {
						if next[i].ID == tempID {
							next[i] = *deck
							return next, true
						}
					}
					return append(next, *deck), true
				})
				s.SetDeck(*deck)
			}, nil
		},
		refresh: []Key{DecksKey()},
	}
	if err := c.run(ctx, m); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateDeck renames or re-describes a deck.
func (c *Cache) UpdateDeck(ctx context.Context, deckID, title, description string) (*types.Deck, error) {
	if err := types.ValidateIDPresent(deckID, "deck id"); err != nil {
		return nil, err
	}
	if err := types.ValidateDeckTitle(title); err != nil {
		return nil, err
	}
	if err := types.ValidateDeckDescription(description); err != nil {
		return nil, err
	}
	user, err := c.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock()
	var updated *types.Deck
	var prevRow types.Deck
	var hadRow bool
	m := mutation{
		op:       "update_deck",
		shardKey: deckID,
		snapshot: []Key{DeckKey(deckID)},
		apply: func(s *Store) {
			s.update(DecksKey(), func(cur any) (any, bool) {
				decks, ok := cur.([]types.Deck)
				if !ok {
					return nil, false
				}
				next := types.CloneDecks(decks)
				for i := range next {
					if next[i].ID == deckID {
						prevRow, hadRow = decks[i], true
						next[i].Title = title
						next[i].Description = description
						next[i].UpdatedAt = now
					}
				}
				return next, true
			})
			s.update(DeckKey(deckID), func(cur any) (any, bool) {
				deck, ok := cur.(types.Deck)
				if !ok {
					return nil, false
				}
				deck.Title = title
				deck.Description = description
				deck.UpdatedAt = now
				return deck, true
			})
		},
		revert: func(s *Store) {
			if !hadRow {
				return
			}
			s.update(DecksKey(), func(cur any) (any, bool) {
				decks, ok := cur.([]types.Deck)
				if !ok {
					return nil, false
				}
				next := types.CloneDecks(decks)
				for i := range next {
					if next[i].ID == deckID {
						next[i] = prevRow
					}
				}
				return next, true
			})
		},
		shared: []Key{DecksKey()},
		commit: func(jobCtx context.Context) (func(*Store), error) {
			deck, err := api.UpdateDeck(jobCtx, c.http, c.baseURL, deckID, types.UpdateDeckRequest{
				UserID:      user.ID,
				Title:       title,
				Description: description,
			})
			if err != nil {
				return nil, err
			}
			updated = deck
			return func(s *Store) {
				s.update(DecksKey(), func(cur any) (any, bool) {
					decks, ok := cur.([]types.Deck)
					if !ok {
						return nil, false
					}
					next := types.CloneDecks(decks)
					for i := range next {
						if next[i].ID == deckID {
							next[i] = *deck
						}
					}
					return next, true
				})
				s.SetDeck(*deck)
			}, nil
		},
		refresh: []Key{DecksKey(), DeckKey(deckID)},
	}
	if err := c.run(ctx, m); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDeck removes a deck. The cascade drops the deck's single-entity
// and flashcard cache keys entirely; on rollback both reappear exactly as
// they were.
func (c *Cache) DeleteDeck(ctx context.Context, deckID string) error {
	if err := types.ValidateIDPresent(deckID, "deck id"); err != nil {
		return err
	}
	var removed types.Deck
	removedAt := -1
	m := mutation{
		op:       "delete_deck",
		shardKey: deckID,
		snapshot: []Key{DeckKey(deckID), FlashcardsKey(deckID)},
		apply: func(s *Store) {
			s.update(DecksKey(), func(cur any) (any, bool) {
				decks, ok := cur.([]types.Deck)
				if !ok {
					return nil, false
				}
				next := make([]types.Deck, 0, len(decks))
				for i, d := range decks {
					if d.ID == deckID {
						removed, removedAt = d, i
						continue
					}
					next = append(next, d)
				}
				return next, true
			})
			s.Delete(DeckKey(deckID), FlashcardsKey(deckID))
		},
		revert: func(s *Store) {
			if removedAt < 0 {
				return
			}
			s.update(DecksKey(), func(cur any) (any, bool) {
				decks, ok := cur.([]types.Deck)
				if !ok {
					return nil, false
				}
				next := types.CloneDecks(decks)
				at := removedAt
				if at > len(next) {
					at = len(next)
				}
				return append(next[:at], append([]types.Deck{removed}, next[at:]...)...), true
			})
		},
		shared: []Key{DecksKey()},
		commit: func(jobCtx context.Context) (func(*Store), error) {
			return nil, api.DeleteDeck(jobCtx, c.http, c.baseURL, deckID)
		},
		// The deleted deck's own keys stay gone; only the list refreshes.
		refresh: []Key{DecksKey()},
	}
	return c.run(ctx, m)
}
