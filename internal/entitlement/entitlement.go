// Package entitlement answers one question for the repository: may the
// current user hold more than the free-tier number of snippets.
package entitlement

import (
	"context"
	"fmt"
	"time"

	"github.com/snipstash/snipstash/internal/kv"
)

// FreeSnippetLimit is the default number of snippets available without an
// entitlement.
const FreeSnippetLimit = 2

// Gate reports the caller's entitlement state. The repository re-queries it
// on every gated operation; implementations should not assume caching.
type Gate interface {
	Entitled(ctx context.Context) (bool, error)
}

// Static is a fixed-answer Gate, used by tests and the CLI --entitled flag.
type Static bool

// Entitled returns the fixed answer.
func (s Static) Entitled(_ context.Context) (bool, error) {
	return bool(s), nil
}

// Trial grants entitlement while a stored trial end date lies in the future.
// The end date lives in the durable store so it survives restarts alongside
// the snippet data.
type Trial struct {
	store kv.Store
	now   func() time.Time
}

var _ Gate = (*Trial)(nil)

// NewTrial creates a trial gate reading from the given store.
func NewTrial(store kv.Store) *Trial {
	return &Trial{store: store, now: time.Now}
}

// Entitled reports whether a trial is active. A missing slot means no trial
// was ever started.
func (t *Trial) Entitled(ctx context.Context) (bool, error) {
	blob, ok, err := t.store.Get(ctx, kv.SlotTrialEnd)
	if err != nil {
		return false, fmt.Errorf("reading trial end date: %w", err)
	}
	if !ok {
		return false, nil
	}

	end, err := time.Parse(time.RFC3339, blob)
	if err != nil {
		return false, fmt.Errorf("parsing trial end date %q: %w", blob, err)
	}

	return t.now().Before(end), nil
}

// Start begins (or extends) a trial lasting d from now and returns the end
// date.
func (t *Trial) Start(ctx context.Context, d time.Duration) (time.Time, error) {
	end := t.now().Add(d).UTC()
	if err := t.store.Put(ctx, kv.SlotTrialEnd, end.Format(time.RFC3339)); err != nil {
		return time.Time{}, fmt.Errorf("storing trial end date: %w", err)
	}
	return end, nil
}
