package shardqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config controls the executor's sharding, queueing, and retry behaviour.
// Zero values are replaced with defaults in NewShardExecutor.
type Config struct {
	// Shards is the number of worker goroutines; jobs for the same key
	// always land on the same shard.
	Shards int `split_words:"true" default:"4"`

	// QueueSize bounds each shard's pending-job channel.
	QueueSize int `split_words:"true" default:"128"`

	// EnqueueTimeout bounds how long Submit blocks on a full shard before
	// returning a QueueFullError.
	EnqueueTimeout time.Duration `split_words:"true" default:"100ms"`

	// MaxAttempts caps retries of recoverable job errors.
	MaxAttempts int `split_words:"true" default:"8"`

	// BaseBackoff and MaxInterval shape the exponential retry backoff.
	BaseBackoff time.Duration `split_words:"true" default:"100ms"`
	MaxInterval time.Duration `split_words:"true" default:"20s"`

	// ErrorHandler, when set, receives every terminal job error.
	ErrorHandler func(error) `ignored:"true"`
}

// LoadConfig reads executor settings from SQ_* environment variables,
// falling back to the documented defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("sq", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
