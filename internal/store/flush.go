package store

import (
	"context"
	"encoding/json"

	"github.com/snipstash/snipstash/internal/errors"
	"github.com/snipstash/snipstash/internal/kv"
	"github.com/snipstash/snipstash/internal/snippet"
)

// load pulls the three collections out of the durable store. A slot that was
// never written seeds its built-in default; a blob that fails to decode is a
// persistence error, not an empty collection.
func (r *Repository) load(ctx context.Context) error {
	if err := loadSlot(ctx, r.store, kv.SlotSnippets, &r.snippets, func() []snippet.Snippet {
		return []snippet.Snippet{}
	}); err != nil {
		return err
	}
	if err := loadSlot(ctx, r.store, kv.SlotActivity, &r.activity, func() []snippet.ActivityRecord {
		return []snippet.ActivityRecord{}
	}); err != nil {
		return err
	}
	return loadSlot(ctx, r.store, kv.SlotCategories, &r.categories, snippet.DefaultCategories)
}

func loadSlot[T any](ctx context.Context, store kv.Store, slot string, dst *[]T, seed func() []T) error {
	blob, ok, err := store.Get(ctx, slot)
	if err != nil {
		return errors.NewPersistence(slot, err)
	}
	if !ok {
		*dst = seed()
		return nil
	}
	if err := json.Unmarshal([]byte(blob), dst); err != nil {
		return errors.NewPersistence(slot, err)
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}

// markDirtyLocked schedules a flush. The channel has capacity one, so a
// burst of mutations coalesces into a single write of the latest state.
func (r *Repository) markDirtyLocked() {
	if r.closed {
		return
	}
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

// flusher persists the latest snapshot whenever the store is marked dirty.
// It exits when Close closes the dirty channel.
func (r *Repository) flusher() {
	defer close(r.stopped)
	for range r.dirty {
		if err := r.Flush(context.Background()); err != nil {
			r.logger.Error().Err(err).Msg("background flush failed; in-memory state remains authoritative")
		}
	}
}

// Flush synchronously persists the current state. Mutation paths never call
// this; they go through markDirtyLocked so the caller is not blocked on
// storage latency.
func (r *Repository) Flush(ctx context.Context) error {
	// Serialize under the lock, write outside it so a slow store never
	// stalls mutations.
	r.mu.Lock()
	snippetsJSON, sErr := json.Marshal(r.snippets)
	activityJSON, aErr := json.Marshal(r.activity)
	categoriesJSON, cErr := json.Marshal(r.categories)
	r.mu.Unlock()

	for _, err := range []error{sErr, aErr, cErr} {
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	return r.putAll(ctx, string(snippetsJSON), string(activityJSON), string(categoriesJSON))
}

// putAll writes the three slots. Each slot write is atomic on its own; a
// failure part-way leaves earlier slots on the new snapshot and later ones
// on the previous snapshot, which the loader accepts.
func (r *Repository) putAll(ctx context.Context, snippetsJSON, activityJSON, categoriesJSON string) error {
	if err := r.store.Put(ctx, kv.SlotSnippets, snippetsJSON); err != nil {
		return errors.NewPersistence(kv.SlotSnippets, err)
	}
	if err := r.store.Put(ctx, kv.SlotActivity, activityJSON); err != nil {
		return errors.NewPersistence(kv.SlotActivity, err)
	}
	if err := r.store.Put(ctx, kv.SlotCategories, categoriesJSON); err != nil {
		return errors.NewPersistence(kv.SlotCategories, err)
	}
	return nil
}
