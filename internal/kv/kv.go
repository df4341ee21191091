// Package kv provides the durable store behind the repository: a small set
// of named slots, each holding one opaque blob. Writes replace a slot's blob
// atomically, so a crash mid-flush leaves the previous snapshot intact,
// never a partial one.
package kv

import "context"

// Slot names. Each logical collection persists under its own slot.
const (
	SlotSnippets   = "snippets"
	SlotActivity   = "recentActivity"
	SlotCategories = "categories"

	// SlotTrialEnd holds the trial expiry used by the entitlement gate.
	SlotTrialEnd = "trialEndDate"
)

// Store is a named-slot blob store.
type Store interface {
	// Get returns the blob stored under slot. ok is false if the slot has
	// never been written.
	Get(ctx context.Context, slot string) (blob string, ok bool, err error)

	// Put replaces the blob stored under slot in a single atomic write.
	Put(ctx context.Context, slot, blob string) error

	// Close releases any resources held by the store.
	Close() error
}
