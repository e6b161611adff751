package flashnest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	flashnest "github.com/flashnest/flashnest-go"
)

// fakeBackend is an in-memory FlashNest API used by the mock integration
// suite. It implements the deck/flashcard REST surface plus the
// chat-completion endpoint, and can be told to fail writes to exercise
// the rollback path.
type fakeBackend struct {
	mu       sync.Mutex
	user     flashnest.User
	decks    map[string]*flashnest.Deck
	cards    map[string][]flashnest.Flashcard // deckID -> cards
	nextID   int
	failNext bool // next write returns 500

	completion string // reply content for chat completions
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		user:  flashnest.User{ID: "u1", Email: "student@example.com"},
		decks: map[string]*flashnest.Deck{},
		cards: map[string][]flashnest.Flashcard{},
	}
}

func (b *fakeBackend) id(prefix string) string {
	b.nextID++
	return fmt.Sprintf("%s-%d", prefix, b.nextID)
}

func (b *fakeBackend) failWrites() {
	b.mu.Lock()
	b.failNext = true
	b.mu.Unlock()
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodGet && b.failNext {
			b.failNext = false
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		switch {
		case r.URL.Path == "/api/users/me":
			_ = json.NewEncoder(w).Encode(map[string]flashnest.User{"data": b.user})

		case r.URL.Path == "/api/v1/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{"role": "assistant", "content": b.completion}},
				},
			})

		case len(parts) == 4 && parts[1] == "users" && parts[3] == "decks" && r.Method == http.MethodGet:
			decks := make([]flashnest.Deck, 0, len(b.decks))
			for _, d := range b.decks {
				decks = append(decks, *d)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"decks": decks, "count": len(decks)})

		case len(parts) == 4 && parts[1] == "users" && parts[3] == "decks" && r.Method == http.MethodPost:
			var req struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			d := &flashnest.Deck{
				ID: b.id("d"), UserID: b.user.ID,
				Title: req.Title, Description: req.Description,
				CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
			}
			b.decks[d.ID] = d
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(d)

		case len(parts) == 3 && parts[1] == "decks":
			b.serveDeck(w, r, parts[2])

		case len(parts) == 4 && parts[1] == "decks" && parts[3] == "flashcards":
			b.serveFlashcards(w, r, parts[2])

		case len(parts) == 5 && parts[1] == "decks" && parts[3] == "flashcards" && parts[4] == "bulk":
			b.serveBulk(w, r, parts[2])

		case len(parts) == 5 && parts[1] == "decks" && parts[3] == "flashcards":
			b.serveFlashcard(w, r, parts[2], parts[4])

		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
		}
	})
}

func (b *fakeBackend) serveDeck(w http.ResponseWriter, r *http.Request, deckID string) {
	d, ok := b.decks[deckID]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(d)
	case http.MethodPatch:
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		d.Title, d.Description = req.Title, req.Description
		d.UpdatedAt = time.Now().UTC()
		_ = json.NewEncoder(w).Encode(d)
	case http.MethodDelete:
		delete(b.decks, deckID)
		delete(b.cards, deckID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (b *fakeBackend) serveFlashcards(w http.ResponseWriter, r *http.Request, deckID string) {
	switch r.Method {
	case http.MethodGet:
		cards := b.cards[deckID]
		if cards == nil {
			cards = []flashnest.Flashcard{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"flashcards": cards, "count": len(cards)})
	case http.MethodPost:
		var req struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f := flashnest.Flashcard{
			ID: b.id("f"), DeckID: deckID,
			Question: req.Question, Answer: req.Answer,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		b.cards[deckID] = append(b.cards[deckID], f)
		b.bumpCount(deckID, 1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(f)
	}
}

func (b *fakeBackend) serveBulk(w http.ResponseWriter, r *http.Request, deckID string) {
	var req struct {
		Flashcards []flashnest.Candidate `json:"flashcards"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	created := make([]flashnest.Flashcard, 0, len(req.Flashcards))
	for _, cand := range req.Flashcards {
		f := flashnest.Flashcard{
			ID: b.id("f"), DeckID: deckID,
			Question: cand.Question, Answer: cand.Answer,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		b.cards[deckID] = append(b.cards[deckID], f)
		created = append(created, f)
	}
	b.bumpCount(deckID, len(created))
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"flashcards": created, "count": len(created)})
}

func (b *fakeBackend) serveFlashcard(w http.ResponseWriter, r *http.Request, deckID, cardID string) {
	cards := b.cards[deckID]
	idx := -1
	for i, f := range cards {
		if f.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		cards[idx].Question, cards[idx].Answer = req.Question, req.Answer
		cards[idx].UpdatedAt = time.Now().UTC()
		_ = json.NewEncoder(w).Encode(cards[idx])
	case http.MethodDelete:
		b.cards[deckID] = append(cards[:idx], cards[idx+1:]...)
		b.bumpCount(deckID, -1)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (b *fakeBackend) bumpCount(deckID string, delta int) {
	if d, ok := b.decks[deckID]; ok {
		d.FlashcardsCount += delta
	}
}

// newClient starts the fake backend and a Client scoped to its user.
func newClient(t *testing.T) (*flashnest.Client, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	c := flashnest.New(srv.URL, "test-api-key", flashnest.WithGenerationEndpoint(srv.URL, "gen-key"))
	t.Cleanup(func() { _ = c.Close() })
	c.SetSession(b.user)
	return c, b
}
