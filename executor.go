package flashnest

import (
	"context"

	"github.com/flashnest/flashnest-go/internal/shardqueue"
)

// executor abstracts the internal job runner that serializes cache
// mutations and background revalidations per deck.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Barrier(context.Context, string) error
	Stop()
}

// Note: all clients include an executor by default; mutations require it.
