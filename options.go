package flashnest

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"time"
)

// Option configures a Client during construction in New.
//
// Options are applied before the authorization transport wrappers are
// installed, so transport-related options (like debug logging) will be
// placed underneath the bearer-key wrappers. Options must be deterministic
// and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the CRUD http.Client timeout.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithGenerationTimeout sets the timeout of the dedicated generation
// http.Client. Chat completions routinely run tens of seconds, so this is
// deliberately independent of the CRUD timeout.
func WithGenerationTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("generation timeout must be > 0")
		}
		c.genHTTP.Timeout = d
		return nil
	}
}

// WithGenerationEndpoint points generation at a different
// OpenRouter-compatible endpoint with its own bearer key. An empty key
// falls back to the client's API key.
func WithGenerationEndpoint(baseURL, apiKey string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return fmt.Errorf("generation endpoint cannot be empty")
		}
		c.genBaseURL = baseURL
		c.genAPIKey = apiKey
		return nil
	}
}

// WithModel overrides the chat model flashcards are generated with.
func WithModel(model string) Option {
	return func(c *Client) error {
		if model == "" {
			return fmt.Errorf("model cannot be empty")
		}
		c.model = model
		return nil
	}
}

// WithStaleTTL overrides the cache staleness window for both decks and
// flashcards. Zero keeps the per-collection defaults.
func WithStaleTTL(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("stale TTL must be >= 0")
		}
		c.staleTTL = d
		return nil
	}
}

// WithExecutor replaces the internal shard executor. Primarily a test
// seam; the replacement must preserve FIFO ordering per key.
func WithExecutor(e executor) Option {
	return func(c *Client) error {
		if e == nil {
			return fmt.Errorf("executor cannot be nil")
		}
		c.exec = e
		return nil
	}
}

// WithDebugLogging wraps both transports so each request/response is
// logged when enabled is true.
//
// Do not enable this option in production environments: dumps include
// headers and full bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: baseTransport(c.http)}
			c.genHTTP.Transport = &debugTransport{base: baseTransport(c.genHTTP)}
		}
		return nil
	}
}
