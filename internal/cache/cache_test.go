package cache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashnest/flashnest-go/internal/shardqueue"
	"github.com/flashnest/flashnest-go/internal/types"
)

func newTestCache(t *testing.T, h http.Handler) *Cache {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	exec := shardqueue.NewShardExecutor(shardqueue.Config{
		Shards:         2,
		QueueSize:      64,
		EnqueueTimeout: time.Second,
		MaxAttempts:    2,
		BaseBackoff:    time.Millisecond,
		MaxInterval:    5 * time.Millisecond,
	})
	t.Cleanup(exec.Stop)
	return New(Config{
		HTTP:    srv.Client(),
		BaseURL: srv.URL,
		Exec:    exec,
		CurrentUser: func(context.Context) (*types.User, error) {
			return &types.User{ID: "u1"}, nil
		},
		Logger: zerolog.Nop(),
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestListDecks_MissThenHit(t *testing.T) {
	t.Parallel()
	var fetches int32
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
			Decks: []types.Deck{{ID: "d1", UserID: "u1", Title: "Biology"}},
			Count: 1,
		})
	}))

	for i := 0; i < 3; i++ {
		decks, err := c.ListDecks(context.Background())
		if err != nil {
			t.Fatalf("ListDecks: %v", err)
		}
		if len(decks) != 1 || decks[0].ID != "d1" {
			t.Fatalf("unexpected decks: %+v", decks)
		}
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("expected a single backend fetch, got %d", got)
	}
}

func TestListDecks_StaleServesCachedAndRevalidates(t *testing.T) {
	t.Parallel()
	var fetches int32
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&fetches, 1)
		title := "v1"
		if n > 1 {
			title = "v2"
		}
		writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
			Decks: []types.Deck{{ID: "d1", Title: title}},
			Count: 1,
		})
	}))
	c.deckTTL = time.Nanosecond

	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("warm read: %v", err)
	}
	time.Sleep(time.Millisecond)

	// Stale read still answers from cache.
	decks, err := c.ListDecks(context.Background())
	if err != nil {
		t.Fatalf("stale read: %v", err)
	}
	if decks[0].Title != "v1" {
		t.Fatalf("stale read should serve cached data, got %q", decks[0].Title)
	}

	// Wait out the queued revalidation, then observe the new value.
	if err := c.exec.Barrier(context.Background(), string(DecksKey())); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	decks, _, ok := c.store.GetDecks()
	if !ok || decks[0].Title != "v2" {
		t.Fatalf("expected revalidated data, got ok=%v decks=%+v", ok, decks)
	}
}

func TestGetDeck_FallsBackToCachedList(t *testing.T) {
	t.Parallel()
	var singleFetches int32
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users/u1/decks" {
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology"}},
				Count: 1,
			})
			return
		}
		atomic.AddInt32(&singleFetches, 1)
		writeJSON(t, w, http.StatusOK, types.Deck{ID: "d1", Title: "Biology"})
	}))

	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("ListDecks: %v", err)
	}
	deck, err := c.GetDeck(context.Background(), "d1")
	if err != nil || deck.Title != "Biology" {
		t.Fatalf("GetDeck: deck=%+v err=%v", deck, err)
	}
	if atomic.LoadInt32(&singleFetches) != 0 {
		t.Fatal("GetDeck should have been served from the cached list")
	}
}

func TestCreateDeck_ReconcilesTempEntry(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", FlashcardsCount: 2}},
				Count: 1,
			})
		case http.MethodPost:
			writeJSON(t, w, http.StatusCreated, types.Deck{ID: "d2", UserID: "u1", Title: "Chemistry"})
		}
	}))

	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("warm read: %v", err)
	}
	created, err := c.CreateDeck(context.Background(), "Chemistry", "")
	if err != nil {
		t.Fatalf("CreateDeck: %v", err)
	}
	if created.ID != "d2" {
		t.Fatalf("expected server-assigned ID, got %q", created.ID)
	}

	decks, _, _ := c.store.GetDecks()
	if len(decks) != 2 {
		t.Fatalf("expected 2 decks, got %+v", decks)
	}
	for _, d := range decks {
		if d.ID != "d1" && d.ID != "d2" {
			t.Fatalf("temporary entry survived reconciliation: %+v", d)
		}
	}
}

func TestCreateDeck_RollbackRestoresExactState(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", FlashcardsCount: 2}},
				Count: 1,
			})
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	before, err := c.ListDecks(context.Background())
	if err != nil {
		t.Fatalf("warm read: %v", err)
	}

	if _, err := c.CreateDeck(context.Background(), "Chemistry", ""); err == nil {
		t.Fatal("expected commit failure")
	}

	after, _, ok := c.store.GetDecks()
	if !ok || !reflect.DeepEqual(before, after) {
		t.Fatalf("rollback not exact:\nbefore=%+v\nafter=%+v", before, after)
	}
}

func TestUpdateDeck_RollbackRestoresListEntry(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", Description: "cells", FlashcardsCount: 2}},
				Count: 1,
			})
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	before, err := c.ListDecks(context.Background())
	if err != nil {
		t.Fatalf("warm read: %v", err)
	}

	if _, err := c.UpdateDeck(context.Background(), "d1", "Chemistry", "atoms"); err == nil {
		t.Fatal("expected commit failure")
	}

	after, _, ok := c.store.GetDecks()
	if !ok || !reflect.DeepEqual(before, after) {
		t.Fatalf("rollback not exact:\nbefore=%+v\nafter=%+v", before, after)
	}
}

func TestRollback_PreservesConcurrentDeckCreate(t *testing.T) {
	t.Parallel()
	cardArrived := make(chan struct{})
	releaseCard := make(chan struct{})
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/flashcards"):
			close(cardArrived)
			<-releaseCard
			http.Error(w, "boom", http.StatusInternalServerError)
		case r.Method == http.MethodPost:
			writeJSON(t, w, http.StatusCreated, types.Deck{ID: "d9", UserID: "u1", Title: "New"})
		default:
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", FlashcardsCount: 0}},
				Count: 1,
			})
		}
	}))

	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("warm decks: %v", err)
	}

	cardDone := make(chan error, 1)
	go func() {
		_, err := c.CreateFlashcard(context.Background(), "d1", "Q", "A")
		cardDone <- err
	}()
	<-cardArrived

	// A deck create lands on the deck-list shard while the flashcard write
	// for d1 is still in flight on its own shard. (With two shards, "d1"
	// and the deck-list key hash to different ones.)
	if _, err := c.CreateDeck(context.Background(), "New", ""); err != nil {
		t.Fatalf("CreateDeck: %v", err)
	}

	close(releaseCard)
	if err := <-cardDone; err == nil {
		t.Fatal("expected flashcard commit failure")
	}

	decks, _, _ := c.store.GetDecks()
	ids := make(map[string]int)
	for _, d := range decks {
		ids[d.ID] = d.FlashcardsCount
	}
	if len(decks) != 2 {
		t.Fatalf("rollback lost a concurrently created deck: %+v", decks)
	}
	if _, ok := ids["d9"]; !ok {
		t.Fatalf("committed deck missing after unrelated rollback: %+v", decks)
	}
	if count, ok := ids["d1"]; !ok || count != 0 {
		t.Fatalf("count bump not reverted: %+v", decks)
	}
}

func TestDeleteDeck_CascadeDropsKeys(t *testing.T) {
	t.Parallel()
	var cardFetches int32
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/decks/d1/flashcards":
			atomic.AddInt32(&cardFetches, 1)
			writeJSON(t, w, http.StatusOK, types.ListFlashcardsResponse{
				Flashcards: []types.Flashcard{{ID: "f1", DeckID: "d1", Question: "Q", Answer: "A"}},
				Count:      1,
			})
		default:
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", FlashcardsCount: 1}},
				Count: 1,
			})
		}
	}))

	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("warm decks: %v", err)
	}
	if _, err := c.ListFlashcards(context.Background(), "d1"); err != nil {
		t.Fatalf("warm cards: %v", err)
	}

	if err := c.DeleteDeck(context.Background(), "d1"); err != nil {
		t.Fatalf("DeleteDeck: %v", err)
	}

	if decks, _, _ := c.store.GetDecks(); len(decks) != 0 {
		t.Fatalf("deck still listed after delete: %+v", decks)
	}
	if _, _, ok := c.store.GetFlashcards("d1"); ok {
		t.Fatal("flashcards key should be removed by cascade")
	}
	if _, _, ok := c.store.GetDeck("d1"); ok {
		t.Fatal("deck key should be removed by cascade")
	}
}

func TestDeleteDeck_RollbackRestoresCascade(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			http.Error(w, "boom", http.StatusInternalServerError)
		case r.URL.Path == "/api/decks/d1/flashcards":
			writeJSON(t, w, http.StatusOK, types.ListFlashcardsResponse{
				Flashcards: []types.Flashcard{{ID: "f1", DeckID: "d1", Question: "Q", Answer: "A", Tags: []string{"bio"}}},
				Count:      1,
			})
		default:
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", FlashcardsCount: 1}},
				Count: 1,
			})
		}
	}))

	beforeDecks, err := c.ListDecks(context.Background())
	if err != nil {
		t.Fatalf("warm decks: %v", err)
	}
	beforeCards, err := c.ListFlashcards(context.Background(), "d1")
	if err != nil {
		t.Fatalf("warm cards: %v", err)
	}

	if err := c.DeleteDeck(context.Background(), "d1"); err == nil {
		t.Fatal("expected commit failure")
	}

	afterDecks, _, _ := c.store.GetDecks()
	afterCards, _, ok := c.store.GetFlashcards("d1")
	if !ok {
		t.Fatal("flashcards key not restored")
	}
	if !reflect.DeepEqual(beforeDecks, afterDecks) {
		t.Fatalf("deck list rollback not exact:\nbefore=%+v\nafter=%+v", beforeDecks, afterDecks)
	}
	if !reflect.DeepEqual(beforeCards, afterCards) {
		t.Fatalf("flashcard rollback not exact:\nbefore=%+v\nafter=%+v", beforeCards, afterCards)
	}
}

func TestCreateFlashcard_AdjustsDeckCount(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			writeJSON(t, w, http.StatusCreated, types.Flashcard{ID: "f2", DeckID: "d1", Question: "Q2", Answer: "A2"})
		case r.URL.Path == "/api/decks/d1/flashcards":
			writeJSON(t, w, http.StatusOK, types.ListFlashcardsResponse{
				Flashcards: []types.Flashcard{{ID: "f1", DeckID: "d1", Question: "Q1", Answer: "A1"}},
				Count:      1,
			})
		default:
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", FlashcardsCount: 1}},
				Count: 1,
			})
		}
	}))

	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("warm decks: %v", err)
	}
	if _, err := c.ListFlashcards(context.Background(), "d1"); err != nil {
		t.Fatalf("warm cards: %v", err)
	}

	card, err := c.CreateFlashcard(context.Background(), "d1", "Q2", "A2")
	if err != nil || card.ID != "f2" {
		t.Fatalf("CreateFlashcard: card=%+v err=%v", card, err)
	}

	decks, _, _ := c.store.GetDecks()
	if decks[0].FlashcardsCount != 2 {
		t.Fatalf("expected count 2, got %d", decks[0].FlashcardsCount)
	}
	cards, _, _ := c.store.GetFlashcards("d1")
	if len(cards) != 2 || cards[1].ID != "f2" {
		t.Fatalf("unexpected cards after create: %+v", cards)
	}
}

func TestCreateFlashcard_NoCachedListStillCommits(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, types.Flashcard{ID: "f1", DeckID: "d1", Question: "Q", Answer: "A"})
	}))
	card, err := c.CreateFlashcard(context.Background(), "d1", "Q", "A")
	if err != nil || card == nil || card.ID != "f1" {
		t.Fatalf("CreateFlashcard without cache: card=%+v err=%v", card, err)
	}
}

func TestCreateFlashcardsBulk_ReconcilesByContent(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			// Server assigns IDs and returns the batch reordered.
			writeJSON(t, w, http.StatusCreated, types.BulkCreateFlashcardsResponse{
				Flashcards: []types.Flashcard{
					{ID: "f3", DeckID: "d1", Question: "Q3", Answer: "A3"},
					{ID: "f2", DeckID: "d1", Question: "Q2", Answer: "A2"},
				},
				Count: 2,
			})
		case r.URL.Path == "/api/decks/d1/flashcards":
			writeJSON(t, w, http.StatusOK, types.ListFlashcardsResponse{
				Flashcards: []types.Flashcard{{ID: "f1", DeckID: "d1", Question: "Q1", Answer: "A1"}},
				Count:      1,
			})
		default:
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", FlashcardsCount: 1}},
				Count: 1,
			})
		}
	}))

	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("warm decks: %v", err)
	}
	if _, err := c.ListFlashcards(context.Background(), "d1"); err != nil {
		t.Fatalf("warm cards: %v", err)
	}

	saved, err := c.CreateFlashcardsBulk(context.Background(), "d1", []types.Candidate{
		{Question: "Q2", Answer: "A2"},
		{Question: "Q3", Answer: "A3"},
	})
	if err != nil || len(saved) != 2 {
		t.Fatalf("CreateFlashcardsBulk: saved=%+v err=%v", saved, err)
	}

	cards, _, _ := c.store.GetFlashcards("d1")
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %+v", cards)
	}
	ids := map[string]bool{}
	for _, f := range cards {
		ids[f.ID] = true
	}
	for _, want := range []string{"f1", "f2", "f3"} {
		if !ids[want] {
			t.Fatalf("missing card %s after reconcile: %+v", want, cards)
		}
	}
	decks, _, _ := c.store.GetDecks()
	if decks[0].FlashcardsCount != 3 {
		t.Fatalf("expected count 3, got %d", decks[0].FlashcardsCount)
	}
}

func TestCreateFlashcardsBulk_RejectsUnsavable(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no HTTP call expected for invalid batch")
	}))
	_, err := c.CreateFlashcardsBulk(context.Background(), "d1", []types.Candidate{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "   "},
	})
	if err == nil {
		t.Fatal("expected error for unsavable candidate")
	}
}

func TestDeleteFlashcard_CountNeverNegative(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/decks/d1/flashcards":
			writeJSON(t, w, http.StatusOK, types.ListFlashcardsResponse{
				Flashcards: []types.Flashcard{{ID: "f1", DeckID: "d1", Question: "Q", Answer: "A"}},
				Count:      1,
			})
		default:
			// Count already drifted to zero server-side.
			writeJSON(t, w, http.StatusOK, types.ListDecksResponse{
				Decks: []types.Deck{{ID: "d1", Title: "Biology", FlashcardsCount: 0}},
				Count: 1,
			})
		}
	}))

	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("warm decks: %v", err)
	}
	if _, err := c.ListFlashcards(context.Background(), "d1"); err != nil {
		t.Fatalf("warm cards: %v", err)
	}
	if err := c.DeleteFlashcard(context.Background(), "d1", "f1"); err != nil {
		t.Fatalf("DeleteFlashcard: %v", err)
	}
	decks, _, _ := c.store.GetDecks()
	if decks[0].FlashcardsCount != 0 {
		t.Fatalf("count went negative: %d", decks[0].FlashcardsCount)
	}
}

func TestMutations_SerializedPerDeck(t *testing.T) {
	t.Parallel()
	var inFlight, maxInFlight int32
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				seen := atomic.LoadInt32(&maxInFlight)
				if cur <= seen || atomic.CompareAndSwapInt32(&maxInFlight, seen, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			writeJSON(t, w, http.StatusCreated, types.Flashcard{ID: "f", DeckID: "d1", Question: "Q", Answer: "A"})
			return
		}
		writeJSON(t, w, http.StatusOK, types.ListFlashcardsResponse{})
	}))

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := c.CreateFlashcard(context.Background(), "d1", "Q", "A")
			done <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("CreateFlashcard: %v", err)
		}
	}
	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Fatalf("mutations on one deck overlapped: max in flight %d", got)
	}
}

func TestClear_DropsAllState(t *testing.T) {
	t.Parallel()
	var fetches int32
	c := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		writeJSON(t, w, http.StatusOK, types.ListDecksResponse{})
	}))
	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("ListDecks: %v", err)
	}
	c.Clear()
	if _, err := c.ListDecks(context.Background()); err != nil {
		t.Fatalf("ListDecks after clear: %v", err)
	}
	if atomic.LoadInt32(&fetches) != 2 {
		t.Fatalf("expected refetch after Clear, got %d fetches", fetches)
	}
}
