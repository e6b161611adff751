package flashnest

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config carries client settings read from FLASHNEST_* environment
// variables. Zero values defer to the SDK defaults.
type Config struct {
	// BaseURL of the FlashNest backend, e.g. https://api.flashnest.app.
	BaseURL string `required:"true" split_words:"true"`

	// APIKey authenticates CRUD requests.
	APIKey string `required:"true" split_words:"true"`

	// GenerationURL and GenerationKey point generation at an
	// OpenRouter-compatible endpoint. Empty values fall back to the
	// default endpoint and the CRUD API key.
	GenerationURL string `split_words:"true"`
	GenerationKey string `split_words:"true"`

	// Model overrides the chat model used for generation.
	Model string

	HTTPTimeout       time.Duration `split_words:"true"`
	GenerationTimeout time.Duration `split_words:"true"`
	StaleTTL          time.Duration `split_words:"true"`
}

// LoadConfig reads client settings from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("flashnest", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewFromEnv constructs a Client from FLASHNEST_* environment variables.
// Explicit options are applied after the environment-derived ones and win.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	var envOpts []Option
	if cfg.GenerationURL != "" {
		envOpts = append(envOpts, WithGenerationEndpoint(cfg.GenerationURL, cfg.GenerationKey))
	}
	if cfg.Model != "" {
		envOpts = append(envOpts, WithModel(cfg.Model))
	}
	if cfg.HTTPTimeout > 0 {
		envOpts = append(envOpts, WithHTTPTimeout(cfg.HTTPTimeout))
	}
	if cfg.GenerationTimeout > 0 {
		envOpts = append(envOpts, WithGenerationTimeout(cfg.GenerationTimeout))
	}
	if cfg.StaleTTL > 0 {
		envOpts = append(envOpts, WithStaleTTL(cfg.StaleTTL))
	}
	return New(cfg.BaseURL, cfg.APIKey, append(envOpts, opts...)...), nil
}
