// Package cache is the client-side entity cache for decks and flashcards.
// All writes go through the optimistic mutation protocol: snapshot the
// shard-owned keys, apply a locally-synthesized update, commit through the
// remote gateway, then reconcile on success or roll back on failure.
// Rollback restores snapshotted keys byte-for-byte; the shared deck list,
// which mutations on other shards may edit concurrently, is rolled back
// with targeted inverse edits instead so a committed edit is never erased.
// Mutations touching the same deck are serialized on the shard executor;
// reads are served stale-while-revalidate.
package cache

// Key identifies one cached collection or entity.
type Key string

// DecksKey is the cache key for the signed-in user's deck list.
func DecksKey() Key { return "decks" }

// DeckKey is the cache key for a single deck.
func DeckKey(deckID string) Key { return Key("deck/" + deckID) }

// FlashcardsKey is the cache key for a deck's flashcard list.
func FlashcardsKey(deckID string) Key { return Key("flashcards/" + deckID) }
