package api

import (
	"fmt"
	"io"
	"net/http"

	sdkerrors "github.com/flashnest/flashnest-go/internal/errors"
	"github.com/flashnest/flashnest-go/internal/types"
)

// HTTPClient interface for dependency injection.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const maxErrorBody = 4096

// checkStatus converts a non-expected status into a typed error: 404 maps to
// types.ErrNotFound so callers can redirect instead of retrying; everything
// else is classified for the executor's retry policy.
func checkStatus(resp *http.Response, want int, op string) error {
	if resp.StatusCode == want {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, types.ErrNotFound)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return sdkerrors.NewHTTPError(resp.StatusCode, string(body), op)
}

// wrapTransportErr classifies transport-level failures (DNS, refused
// connections, client timeouts) as recoverable network errors.
func wrapTransportErr(op string, err error) error {
	return sdkerrors.NewNetworkError(op, err)
}
