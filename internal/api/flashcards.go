package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flashnest/flashnest-go/internal/types"
)

// GetFlashcards retrieves all flashcards in a deck.
func GetFlashcards(ctx context.Context, httpClient *http.Client, baseURL, deckID string) ([]types.Flashcard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(deckID, "deckId"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/decks/%s/flashcards", baseURL, deckID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("list flashcards", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusOK, "list flashcards"); err != nil {
		return nil, err
	}

	var lr types.ListFlashcardsResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	return lr.Flashcards, nil
}

// CreateFlashcard persists a single new flashcard in the deck.
func CreateFlashcard(ctx context.Context, httpClient *http.Client, baseURL, deckID string, req types.CreateFlashcardRequest) (*types.Flashcard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(deckID, "deckId"); err != nil {
		return nil, err
	}
	if err := types.ValidateFlashcard(req.Question, req.Answer); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/decks/%s/flashcards", baseURL, deckID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("create flashcard", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusCreated, "create flashcard"); err != nil {
		return nil, err
	}

	var card types.Flashcard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, err
	}
	return &card, nil
}

// AddBulkFlashcards persists an AI-generated batch in one call and returns
// the server-assigned entities.
func AddBulkFlashcards(ctx context.Context, httpClient *http.Client, baseURL, deckID string, req types.BulkCreateFlashcardsRequest) ([]types.Flashcard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(deckID, "deckId"); err != nil {
		return nil, err
	}
	if len(req.Flashcards) == 0 {
		return nil, types.ErrNoCandidates
	}
	for _, c := range req.Flashcards {
		if err := types.ValidateFlashcard(c.Question, c.Answer); err != nil {
			return nil, err
		}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/decks/%s/flashcards/bulk", baseURL, deckID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("bulk create flashcards", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusCreated, "bulk create flashcards"); err != nil {
		return nil, err
	}

	var br types.BulkCreateFlashcardsResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, err
	}
	return br.Flashcards, nil
}

// UpdateFlashcard edits a flashcard's question and answer.
func UpdateFlashcard(ctx context.Context, httpClient *http.Client, baseURL, deckID, flashcardID string, req types.UpdateFlashcardRequest) (*types.Flashcard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(deckID, "deckId"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(flashcardID, "flashcardId"); err != nil {
		return nil, err
	}
	if err := types.ValidateFlashcard(req.Question, req.Answer); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/decks/%s/flashcards/%s", baseURL, deckID, flashcardID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("update flashcard", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusOK, "update flashcard"); err != nil {
		return nil, err
	}

	var card types.Flashcard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteFlashcard removes a flashcard. Backend returns 204 No Content on success.
func DeleteFlashcard(ctx context.Context, httpClient *http.Client, baseURL, deckID, flashcardID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(deckID, "deckId"); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(flashcardID, "flashcardId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/decks/%s/flashcards/%s", baseURL, deckID, flashcardID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return wrapTransportErr("delete flashcard", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return checkStatus(resp, http.StatusNoContent, "delete flashcard")
}
