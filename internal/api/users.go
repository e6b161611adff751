package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flashnest/flashnest-go/internal/types"
)

// GetCurrentUser resolves the account behind the configured API key.
// Used to bootstrap the session the deck cache is scoped to.
func GetCurrentUser(ctx context.Context, httpClient *http.Client, baseURL string) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/users/me", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr("get current user", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, http.StatusOK, "get current user"); err != nil {
		return nil, err
	}

	var ur types.CurrentUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, err
	}
	return &ur.Data, nil
}
