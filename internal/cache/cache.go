package cache

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashnest/flashnest-go/internal/api"
	"github.com/flashnest/flashnest-go/internal/job"
	"github.com/flashnest/flashnest-go/internal/types"
)

// Default staleness windows. Deck metadata changes rarely; flashcard
// lists are what the user is actively editing.
const (
	DefaultDeckStaleTTL      = 30 * time.Minute
	DefaultFlashcardStaleTTL = 2 * time.Minute
)

// CurrentUserFunc resolves the signed-in user a read or mutation acts for.
type CurrentUserFunc func(ctx context.Context) (*types.User, error)

// Config wires a Cache to its HTTP gateway and executor. StaleTTL, when
// positive, overrides both per-collection defaults.
type Config struct {
	HTTP        *http.Client
	BaseURL     string
	Exec        types.Executor
	CurrentUser CurrentUserFunc
	StaleTTL    time.Duration
	Logger      zerolog.Logger
}

// Cache serves deck and flashcard reads from local state and funnels all
// writes through the optimistic mutation protocol. Reads past the stale
// TTL still return cached data immediately; a revalidation job is queued
// on the same shard key as the entity's mutations so it can never
// interleave with an in-flight write to the same deck.
type Cache struct {
	store       *Store
	http        *http.Client
	baseURL     string
	exec        types.Executor
	currentUser CurrentUserFunc
	deckTTL     time.Duration
	cardTTL     time.Duration
	log         zerolog.Logger
	clock       func() time.Time

	mu       sync.Mutex
	inflight map[Key]bool
}

// New creates a Cache. Exec, HTTP, BaseURL and CurrentUser are required.
func New(cfg Config) *Cache {
	deckTTL, cardTTL := DefaultDeckStaleTTL, DefaultFlashcardStaleTTL
	if cfg.StaleTTL > 0 {
		deckTTL, cardTTL = cfg.StaleTTL, cfg.StaleTTL
	}
	return &Cache{
		store:       NewStore(),
		http:        cfg.HTTP,
		baseURL:     cfg.BaseURL,
		exec:        cfg.Exec,
		currentUser: cfg.CurrentUser,
		deckTTL:     deckTTL,
		cardTTL:     cardTTL,
		log:         cfg.Logger,
		clock:       time.Now,
		inflight:    make(map[Key]bool),
	}
}

// Clear drops all cached state. Called when the session changes.
func (c *Cache) Clear() { c.store.Clear() }

// ListDecks returns the signed-in user's decks. A cache miss fetches
// synchronously; a stale hit returns cached data and revalidates in the
// background.
func (c *Cache) ListDecks(ctx context.Context) ([]types.Deck, error) {
	if decks, at, ok := c.store.GetDecks(); ok {
		if c.fresh(at, c.deckTTL) {
			readsTotal.WithLabelValues("decks", "hit").Inc()
			return decks, nil
		}
		readsTotal.WithLabelValues("decks", "stale").Inc()
		c.revalidate(ctx, DecksKey(), "decks", c.refreshDecks)
		return decks, nil
	}
	readsTotal.WithLabelValues("decks", "miss").Inc()
	if err := c.refreshDecks(ctx); err != nil {
		return nil, err
	}
	decks, _, _ := c.store.GetDecks()
	return decks, nil
}

// GetDeck returns one deck, falling back to the cached deck list before
// hitting the backend.
func (c *Cache) GetDeck(ctx context.Context, deckID string) (*types.Deck, error) {
	if err := types.ValidateIDPresent(deckID, "deck id"); err != nil {
		return nil, err
	}
	if deck, at, ok := c.store.GetDeck(deckID); ok {
		if c.fresh(at, c.deckTTL) {
			readsTotal.WithLabelValues("deck", "hit").Inc()
			return deck, nil
		}
		readsTotal.WithLabelValues("deck", "stale").Inc()
		c.revalidate(ctx, DeckKey(deckID), deckID, func(jobCtx context.Context) error {
			return c.refreshDeck(jobCtx, deckID)
		})
		return deck, nil
	}
	if decks, _, ok := c.store.GetDecks(); ok {
		for i := range decks {
			if decks[i].ID == deckID {
				readsTotal.WithLabelValues("deck", "hit").Inc()
				d := decks[i]
				return &d, nil
			}
		}
	}
	readsTotal.WithLabelValues("deck", "miss").Inc()
	if err := c.refreshDeck(ctx, deckID); err != nil {
		return nil, err
	}
	deck, _, _ := c.store.GetDeck(deckID)
	return deck, nil
}

// ListFlashcards returns a deck's flashcards.
func (c *Cache) ListFlashcards(ctx context.Context, deckID string) ([]types.Flashcard, error) {
	if err := types.ValidateIDPresent(deckID, "deck id"); err != nil {
		return nil, err
	}
	if cards, at, ok := c.store.GetFlashcards(deckID); ok {
		if c.fresh(at, c.cardTTL) {
			readsTotal.WithLabelValues("flashcards", "hit").Inc()
			return cards, nil
		}
		readsTotal.WithLabelValues("flashcards", "stale").Inc()
		c.revalidate(ctx, FlashcardsKey(deckID), deckID, func(jobCtx context.Context) error {
			return c.refreshFlashcards(jobCtx, deckID)
		})
		return cards, nil
	}
	readsTotal.WithLabelValues("flashcards", "miss").Inc()
	if err := c.refreshFlashcards(ctx, deckID); err != nil {
		return nil, err
	}
	cards, _, _ := c.store.GetFlashcards(deckID)
	return cards, nil
}

func (c *Cache) fresh(fetchedAt time.Time, ttl time.Duration) bool {
	return !fetchedAt.IsZero() && c.clock().Sub(fetchedAt) < ttl
}

// revalidate queues a background refresh for key on the given shard key,
// deduplicating so a burst of stale reads enqueues one job. The job
// returns its error to the executor, which retries recoverable failures
// with backoff.
func (c *Cache) revalidate(ctx context.Context, key Key, shardKey string, refresh func(context.Context) error) {
	c.mu.Lock()
	if c.inflight[key] {
		c.mu.Unlock()
		return
	}
	c.inflight[key] = true
	c.mu.Unlock()

	// Detached from the caller: the read has already returned stale data.
	bg := context.WithoutCancel(ctx)
	j := job.New(func(jobCtx context.Context) error {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
		}()
		return refresh(jobCtx)
	})
	if err := c.exec.Submit(bg, shardKey, j); err != nil {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		c.log.Warn().Err(err).Str("key", string(key)).Msg("revalidation not queued")
	}
}

func (c *Cache) refreshDecks(ctx context.Context) error {
	user, err := c.currentUser(ctx)
	if err != nil {
		return err
	}
	decks, err := api.GetDecks(ctx, c.http, c.baseURL, user.ID)
	if err != nil {
		return err
	}
	c.store.SetDecks(decks)
	return nil
}

func (c *Cache) refreshDeck(ctx context.Context, deckID string) error {
	deck, err := api.GetDeck(ctx, c.http, c.baseURL, deckID)
	if err != nil {
		return err
	}
	c.store.SetDeck(*deck)
	return nil
}

func (c *Cache) refreshFlashcards(ctx context.Context, deckID string) error {
	cards, err := api.GetFlashcards(ctx, c.http, c.baseURL, deckID)
	if err != nil {
		return err
	}
	c.store.SetFlashcards(deckID, cards)
	return nil
}
