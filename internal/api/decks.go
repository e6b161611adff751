package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flashnest/flashnest-go/internal/types"
)

// GetDecks retrieves all decks owned by the user.
func GetDecks(ctx context.Context, httpClient *http.Client, baseURL, userID string) ([]types.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/users/%s/decks", baseURL, userID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("list decks", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusOK, "list decks"); err != nil {
		return nil, err
	}

	var lr types.ListDecksResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	return lr.Decks, nil
}

// GetDeck retrieves a single deck by ID.
func GetDeck(ctx context.Context, httpClient *http.Client, baseURL, deckID string) (*types.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(deckID, "deckId"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/decks/%s", baseURL, deckID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("get deck", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusOK, "get deck"); err != nil {
		return nil, err
	}

	var deck types.Deck
	if err := json.NewDecoder(resp.Body).Decode(&deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// CreateDeck creates a new deck for the user named in req.
func CreateDeck(ctx context.Context, httpClient *http.Client, baseURL string, req types.CreateDeckRequest) (*types.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.UserID, "userId"); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/users/%s/decks", baseURL, req.UserID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("create deck", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusCreated, "create deck"); err != nil {
		return nil, err
	}

	var deck types.Deck
	if err := json.NewDecoder(resp.Body).Decode(&deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// UpdateDeck edits a deck's title and description.
func UpdateDeck(ctx context.Context, httpClient *http.Client, baseURL, deckID string, req types.UpdateDeckRequest) (*types.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(deckID, "deckId"); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/decks/%s", baseURL, deckID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("update deck", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusOK, "update deck"); err != nil {
		return nil, err
	}

	var deck types.Deck
	if err := json.NewDecoder(resp.Body).Decode(&deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// DeleteDeck deletes the deck. Backend returns 204 No Content on success and
// cascades deletion of the deck's flashcards server-side.
func DeleteDeck(ctx context.Context, httpClient *http.Client, baseURL, deckID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(deckID, "deckId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/decks/%s", baseURL, deckID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return wrapTransportErr("delete deck", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return checkStatus(resp, http.StatusNoContent, "delete deck")
}
