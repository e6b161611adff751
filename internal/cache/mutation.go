package cache

import (
	"context"

	"github.com/flashnest/flashnest-go/internal/job"
)

// mutation is one optimistic write. Every concrete operation (deck and
// flashcard create/update/delete) is expressed as a mutation and executed
// by run, which owns the protocol:
//
//	snapshot -> apply -> commit -> reconcile   (success)
//	snapshot -> apply -> commit -> restore     (failure)
//
// The whole sequence runs as a single job on the operation's shard key,
// so two mutations on the same deck can never interleave, and neither can
// a queued revalidation for that deck.
type mutation struct {
	// op labels metrics and log lines.
	op string
	// shardKey serializes the mutation with others touching the same entity.
	shardKey string
	// snapshot lists the keys owned by this mutation's shard. Restore puts
	// all of them back byte-for-byte, including re-deleting keys apply
	// created. Keys other shards also edit (the deck list) must never be
	// snapshot: a wholesale restore would erase a concurrently committed
	// mutation's edit. Those keys are rolled back with revert instead.
	snapshot []Key
	// apply performs the local optimistic edit.
	apply func(s *Store)
	// revert undoes apply's edits to shared keys with a targeted inverse
	// edit, so it composes with whatever other shards did in the meantime.
	revert func(s *Store)
	// shared lists the cross-shard keys revert touches. They are marked
	// stale after a rollback so any residue self-heals on the next read.
	shared []Key
	// commit persists the change remotely. On success it may return a
	// reconcile callback that swaps temporary entries for server state.
	commit func(ctx context.Context) (reconcile func(s *Store), err error)
	// refresh lists keys to revalidate after a successful commit. Keys a
	// cascade delete removed must not appear here.
	refresh []Key
}

// run executes m on the shard executor and waits for its outcome. The
// commit error is delivered to the caller through the result channel and
// the job itself returns nil, so the executor's retry policy never
// replays a user-initiated write. If ctx is canceled before the job is
// picked up the executor skips it; if canceled mid-flight the mutation
// still completes against the cache, and the caller gets ctx.Err().
func (c *Cache) run(ctx context.Context, m mutation) error {
	result := make(chan error, 1)
	j := job.New(func(jobCtx context.Context) error {
		start := c.clock()
		snap := c.store.Snapshot(m.snapshot...)
		m.apply(c.store)
		reconcile, err := m.commit(jobCtx)
		mutationDuration.WithLabelValues(m.op).Observe(c.clock().Sub(start).Seconds())
		if err != nil {
			c.store.Restore(snap)
			if m.revert != nil {
				m.revert(c.store)
			}
			c.store.MarkStale(m.shared...)
			mutationsTotal.WithLabelValues(m.op, "rolled_back").Inc()
			c.log.Warn().Err(err).Str("op", m.op).Str("shard", job.ShardLabel(m.shardKey)).Msg("mutation rolled back")
			result <- err
			return nil
		}
		if reconcile != nil {
			reconcile(c.store)
		}
		c.store.MarkStale(m.refresh...)
		mutationsTotal.WithLabelValues(m.op, "committed").Inc()
		c.log.Debug().Str("op", m.op).Str("shard", job.ShardLabel(m.shardKey)).Msg("mutation committed")
		result <- nil
		return nil
	})
	if err := c.exec.Submit(ctx, m.shardKey, j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-result:
		return err
	}
}
