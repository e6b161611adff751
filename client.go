// Package flashnest is the client SDK for the FlashNest flashcard backend.
// It owns two things the apps build on: the AI flashcard generation
// pipeline (prompt construction, chat completion, response recovery) and a
// client-side entity cache that applies every deck/flashcard write
// optimistically and rolls it back if the backend rejects it.
package flashnest

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flashnest/flashnest-go/internal/aigen"
	"github.com/flashnest/flashnest-go/internal/api"
	"github.com/flashnest/flashnest-go/internal/cache"
	"github.com/flashnest/flashnest-go/internal/shardqueue"
	"github.com/flashnest/flashnest-go/internal/types"
)

const (
	// DefaultHTTPTimeout bounds CRUD requests against the FlashNest backend.
	DefaultHTTPTimeout = 10 * time.Second

	// DefaultGenerationTimeout bounds chat-completion requests, which run
	// far longer than CRUD calls.
	DefaultGenerationTimeout = 60 * time.Second

	// DefaultGenerationURL is the OpenRouter-compatible endpoint used when
	// no override is configured.
	DefaultGenerationURL = "https://openrouter.ai"

	// DefaultModel is the chat model flashcards are generated with.
	DefaultModel = "openai/gpt-4o-mini"
)

// Client talks to the FlashNest backend. Reads are served from the entity
// cache (stale-while-revalidate); writes go through the optimistic
// mutation protocol and are serialized per deck. Generation uses a second
// HTTP client with its own timeout and bearer key.
type Client struct {
	baseURL string
	http    *http.Client
	apiKey  string

	genBaseURL string
	genHTTP    *http.Client
	genAPIKey  string
	model      string

	exec     executor
	cache    *cache.Cache
	staleTTL time.Duration

	mu      sync.RWMutex
	session *types.User

	closedOnce uint32
}

// New constructs a Client for the given backend base URL and API key.
// Additional options can be provided via functional arguments.
func New(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	if apiKey == "" {
		panic("apiKey cannot be empty")
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		genBaseURL: DefaultGenerationURL,
		genHTTP:    &http.Client{Timeout: DefaultGenerationTimeout},
		model:      DefaultModel,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	if c.exec == nil {
		c.exec = newDefaultExecutor()
	}
	if c.genAPIKey == "" {
		c.genAPIKey = c.apiKey
	}

	// Wrap both transports so every request carries its bearer key.
	c.http.Transport = &apiKeyTransport{base: baseTransport(c.http), apiKey: c.apiKey}
	c.genHTTP.Transport = &apiKeyTransport{base: baseTransport(c.genHTTP), apiKey: c.genAPIKey}

	c.cache = cache.New(cache.Config{
		HTTP:        c.http,
		BaseURL:     c.baseURL,
		Exec:        c.exec,
		CurrentUser: c.sessionUser,
		StaleTTL:    c.staleTTL,
		Logger:      log.Logger,
	})
	return c
}

func baseTransport(hc *http.Client) http.RoundTripper {
	if hc.Transport != nil {
		return hc.Transport
	}
	return http.DefaultTransport
}

// apiKeyTransport adds a Bearer Authorization header to every request.
type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone so the caller's request is never modified.
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(cloned)
}

// Close stops the background executor. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// newDefaultExecutor constructs the shardqueue executor with sane defaults.
func newDefaultExecutor() *shardqueue.ShardExecutor {
	cfg, err := shardqueue.LoadConfig()
	if err != nil {
		cfg = shardqueue.Config{}
	}
	return shardqueue.NewShardExecutor(cfg)
}

// --------------------------------------------------------------------
// Session lifecycle
// --------------------------------------------------------------------

// SetSession scopes the client to a signed-in user and drops all cached
// state from any previous session.
func (c *Client) SetSession(user User) {
	c.mu.Lock()
	u := user
	c.session = &u
	c.mu.Unlock()
	c.cache.Clear()
}

// ClearSession signs the client out and drops all cached state.
func (c *Client) ClearSession() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.cache.Clear()
}

// CurrentUser returns the session user, fetching it from the backend and
// seeding the session on first call.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	c.mu.RLock()
	if c.session != nil {
		u := *c.session
		c.mu.RUnlock()
		return &u, nil
	}
	c.mu.RUnlock()

	user, err := api.GetCurrentUser(ctx, c.http, c.baseURL)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.session = user
	c.mu.Unlock()
	u := *user
	return &u, nil
}

// sessionUser is the cache's view of the signed-in user. Unlike
// CurrentUser it never hits the network: cache operations before a
// session is established fail with ErrNoSession.
func (c *Client) sessionUser(context.Context) (*types.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil, types.ErrNoSession
	}
	u := *c.session
	return &u, nil
}

// --------------------------------------------------------------------
// Deck operations - served by the entity cache
// --------------------------------------------------------------------

// ListDecks returns the session user's decks.
func (c *Client) ListDecks(ctx context.Context) ([]Deck, error) {
	return c.cache.ListDecks(ctx)
}

// GetDeck returns a single deck.
func (c *Client) GetDeck(ctx context.Context, deckID string) (*Deck, error) {
	return c.cache.GetDeck(ctx, deckID)
}

// CreateDeck creates a deck, visible in ListDecks immediately.
func (c *Client) CreateDeck(ctx context.Context, title, description string) (*Deck, error) {
	return c.cache.CreateDeck(ctx, title, description)
}

// UpdateDeck renames or re-describes a deck.
func (c *Client) UpdateDeck(ctx context.Context, deckID, title, description string) (*Deck, error) {
	return c.cache.UpdateDeck(ctx, deckID, title, description)
}

// DeleteDeck removes a deck and all cached state under it.
func (c *Client) DeleteDeck(ctx context.Context, deckID string) error {
	return c.cache.DeleteDeck(ctx, deckID)
}

// --------------------------------------------------------------------
// Flashcard operations - served by the entity cache
// --------------------------------------------------------------------

// ListFlashcards returns a deck's flashcards.
func (c *Client) ListFlashcards(ctx context.Context, deckID string) ([]Flashcard, error) {
	return c.cache.ListFlashcards(ctx, deckID)
}

// CreateFlashcard adds one card to a deck.
func (c *Client) CreateFlashcard(ctx context.Context, deckID, question, answer string) (*Flashcard, error) {
	return c.cache.CreateFlashcard(ctx, deckID, question, answer)
}

// CreateFlashcards persists a batch of generated candidates in one request.
func (c *Client) CreateFlashcards(ctx context.Context, deckID string, candidates []Candidate) ([]Flashcard, error) {
	return c.cache.CreateFlashcardsBulk(ctx, deckID, candidates)
}

// UpdateFlashcard edits a card's question and answer.
func (c *Client) UpdateFlashcard(ctx context.Context, deckID, cardID, question, answer string) (*Flashcard, error) {
	return c.cache.UpdateFlashcard(ctx, deckID, cardID, question, answer)
}

// DeleteFlashcard removes one card from a deck.
func (c *Client) DeleteFlashcard(ctx context.Context, deckID, cardID string) error {
	return c.cache.DeleteFlashcard(ctx, deckID, cardID)
}

// Flush blocks until every previously submitted job for deckID (mutations
// and background revalidations) has run. An empty deckID flushes the deck
// list's queue instead.
func (c *Client) Flush(ctx context.Context, deckID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := deckID
	if key == "" {
		key = "decks"
	}
	return c.exec.Barrier(ctx, key)
}

// --------------------------------------------------------------------
// Generation
// --------------------------------------------------------------------

// GenerateFlashcards runs the full generation pipeline: build the prompt
// from req, call the chat-completion endpoint, and recover the candidate
// array from the reply. Most callers want NewAISession instead, which adds
// preview state and latest-wins semantics on top of this.
func (c *Client) GenerateFlashcards(ctx context.Context, req GenerateRequest) ([]Candidate, error) {
	prompt, err := aigen.BuildPrompt(req)
	if err != nil {
		return nil, err
	}
	content, err := api.GenerateChatCompletion(ctx, c.genHTTP, c.genBaseURL, c.model, prompt)
	if err != nil {
		generationsTotal.WithLabelValues("request_error").Inc()
		return nil, err
	}
	cands, err := aigen.Parse(content)
	if err != nil {
		generationsTotal.WithLabelValues("parse_error").Inc()
		parseFailuresTotal.Inc()
		log.Warn().Err(err).Msg("generation response not parseable")
		return nil, err
	}
	generationsTotal.WithLabelValues("ok").Inc()
	return cands, nil
}
