// Package store owns the application state: the snippet, category, and
// activity collections, every mutation over them, and their persistence.
// All reads go through snapshot accessors; all writes run under a single
// mutex and finish by scheduling an asynchronous flush to the durable store.
package store

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/snipstash/snipstash/internal/config"
	"github.com/snipstash/snipstash/internal/entitlement"
	"github.com/snipstash/snipstash/internal/errors"
	"github.com/snipstash/snipstash/internal/kv"
	"github.com/snipstash/snipstash/internal/snippet"
)

// Repository holds the in-memory state and coordinates mutations.
// The in-memory state is authoritative for the running session; the durable
// store trails behind it by at most one coalesced flush.
type Repository struct {
	mu         sync.Mutex
	snippets   []snippet.Snippet        // newest-created first
	categories []snippet.Category      // insertion order
	activity   []snippet.ActivityRecord // newest first, append-only

	store  kv.Store
	gate   entitlement.Gate
	cfg    *config.Config
	logger zerolog.Logger

	now func() time.Time

	dirty   chan struct{}
	stopped chan struct{}
	closed  bool
}

// Open loads state from the durable store (seeding defaults on first run),
// and starts the background flusher.
func Open(ctx context.Context, store kv.Store, gate entitlement.Gate, cfg *config.Config, logger zerolog.Logger) (*Repository, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	r := &Repository{
		store:   store,
		gate:    gate,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		dirty:   make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	go r.flusher()

	return r, nil
}

// Close stops the flusher after a final synchronous flush. The durable store
// itself stays open; its owner closes it.
func (r *Repository) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.dirty)
	<-r.stopped

	return r.Flush(context.Background())
}

// AddSnippetInput contains parameters for AddSnippet.
type AddSnippetInput struct {
	Title      string
	Content    string
	CategoryID string // empty means uncategorized
	IsFavorite bool
}

// AddSnippet validates input, applies the free-tier quota, and creates a
// snippet at the head of the collection.
func (r *Repository) AddSnippet(ctx context.Context, input AddSnippetInput) (*snippet.Snippet, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	categoryID, err := r.resolveCategoryLocked(input.CategoryID)
	if err != nil {
		return nil, err
	}

	// Quota applies to the snippet count at call time; the gate is
	// re-queried on every call, never cached.
	limit := r.cfg.FreeSnippetLimit
	if len(r.snippets) >= limit {
		entitled, gateErr := r.gate.Entitled(ctx)
		if gateErr != nil {
			// Fail closed: an unreachable gate never grants entitlement.
			r.logger.Error().Err(gateErr).Msg("entitlement gate failed; treating as not entitled")
			entitled = false
		}
		if !entitled {
			return nil, errors.NewQuotaExceeded(limit)
		}
	}

	now := r.now().UTC()
	s := snippet.Snippet{
		ID:           newULID(now),
		Title:        input.Title, // stored verbatim; emptiness checked on the trimmed form
		Content:      input.Content,
		CategoryID:   categoryID,
		DateCreated:  now,
		DateModified: now,
		IsFavorite:   input.IsFavorite,
		UsageCount:   0,
		LastUsed:     nil,
	}

	r.snippets = append([]snippet.Snippet{s}, r.snippets...)
	r.recordActivityLocked(s.ID, snippet.ActionCreated, now)
	r.markDirtyLocked()

	return &s, nil
}

// UpdateSnippetInput carries the fields to merge into an existing snippet.
// Nil fields are left unchanged.
type UpdateSnippetInput struct {
	Title      *string
	Content    *string
	CategoryID *string
	IsFavorite *bool
}

// UpdateSnippet merges the provided fields and bumps DateModified.
// Usage tracking fields are never touched through this path.
func (r *Repository) UpdateSnippet(ctx context.Context, id string, input UpdateSnippetInput) (*snippet.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findSnippetLocked(id)
	if idx < 0 {
		return nil, errors.NewSnippetNotFound(id)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, errors.NewInvalidRequest("title must not be empty")
		}
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, errors.NewInvalidRequest("content must not be empty")
		}
	}

	var categoryID string
	if input.CategoryID != nil {
		resolved, err := r.resolveCategoryLocked(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryID = resolved
	}

	s := &r.snippets[idx]
	if input.Title != nil {
		s.Title = *input.Title
	}
	if input.Content != nil {
		s.Content = *input.Content
	}
	if input.CategoryID != nil {
		s.CategoryID = categoryID
	}
	if input.IsFavorite != nil {
		s.IsFavorite = *input.IsFavorite
	}

	now := r.now().UTC()
	s.DateModified = now
	r.recordActivityLocked(s.ID, snippet.ActionEdited, now)
	r.markDirtyLocked()

	out := *s
	return &out, nil
}

// DeleteSnippet removes a snippet. The activity log keeps its history; the
// delete event itself is recorded so the feed can show removed items.
func (r *Repository) DeleteSnippet(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findSnippetLocked(id)
	if idx < 0 {
		return errors.NewSnippetNotFound(id)
	}

	r.snippets = append(r.snippets[:idx], r.snippets[idx+1:]...)
	r.recordActivityLocked(id, snippet.ActionDeleted, r.now().UTC())
	r.markDirtyLocked()

	return nil
}

// ToggleFavorite flips the favorite flag. It is a lightweight flag flip, not
// an edit: DateModified stays put and no activity is recorded.
func (r *Repository) ToggleFavorite(ctx context.Context, id string) (*snippet.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findSnippetLocked(id)
	if idx < 0 {
		return nil, errors.NewSnippetNotFound(id)
	}

	r.snippets[idx].IsFavorite = !r.snippets[idx].IsFavorite
	r.markDirtyLocked()

	out := r.snippets[idx]
	return &out, nil
}

// RecordUsage tracks a copy event: usage count up by one, last-used stamped,
// a copied record appended. A missing id is a silent no-op because copy
// events typically come from UI elements holding possibly-stale references.
func (r *Repository) RecordUsage(ctx context.Context, id string) (*snippet.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findSnippetLocked(id)
	if idx < 0 {
		return nil, nil
	}

	now := r.now().UTC()
	s := &r.snippets[idx]
	s.UsageCount++
	s.LastUsed = &now

	r.recordActivityLocked(s.ID, snippet.ActionCopied, now)
	r.markDirtyLocked()

	out := *s
	return &out, nil
}

// AddCategoryInput contains parameters for AddCategory.
type AddCategoryInput struct {
	Name  string
	Color string
}

// AddCategory creates a user category with a generated id and the default
// icon. Categories have no quota.
func (r *Repository) AddCategory(ctx context.Context, input AddCategoryInput) (*snippet.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c := snippet.Category{
		ID:    newULID(r.now().UTC()),
		Name:  input.Name,
		Color: input.Color,
		Icon:  snippet.DefaultCategoryIcon,
	}
	r.categories = append(r.categories, c)
	r.markDirtyLocked()

	return &c, nil
}

// UpdateCategoryInput carries the fields to merge into an existing category.
// Id and icon are immutable.
type UpdateCategoryInput struct {
	Name  *string
	Color *string
}

// UpdateCategory merges the provided fields into an existing category.
func (r *Repository) UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*snippet.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findCategoryLocked(id)
	if idx < 0 {
		return nil, errors.NewCategoryNotFound(id)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, errors.NewInvalidRequest("name must not be empty")
		}
		r.categories[idx].Name = *input.Name
	}
	if input.Color != nil {
		r.categories[idx].Color = *input.Color
	}
	r.markDirtyLocked()

	out := r.categories[idx]
	return &out, nil
}

// DeleteCategory removes a category. It re-checks the referencing-snippet
// rule under the lock even when the caller already pre-checked, since state
// may have changed in between. The activity log is untouched.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findCategoryLocked(id)
	if idx < 0 {
		return errors.NewCategoryNotFound(id)
	}

	if refs := r.countReferencesLocked(id); refs > 0 {
		return errors.NewCategoryInUse(id, refs)
	}

	r.categories = append(r.categories[:idx], r.categories[idx+1:]...)
	r.markDirtyLocked()

	return nil
}

// CategoryInUse reports how many snippets currently reference the category.
// Delete flows consult this before prompting the user; DeleteCategory
// re-checks regardless.
func (r *Repository) CategoryInUse(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countReferencesLocked(id)
}

// RecentLimit returns the configured default window for recently-used
// queries.
func (r *Repository) RecentLimit() int {
	if r.cfg.RecentLimit > 0 {
		return r.cfg.RecentLimit
	}
	return config.DefaultRecentLimit
}

// Snapshot is a point-in-time copy of the repository state.
type Snapshot struct {
	Snippets   []snippet.Snippet
	Categories []snippet.Category
	Activity   []snippet.ActivityRecord
}

// Snapshot returns copies of all three collections.
func (r *Repository) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Snippets:   make([]snippet.Snippet, len(r.snippets)),
		Categories: make([]snippet.Category, len(r.categories)),
		Activity:   make([]snippet.ActivityRecord, len(r.activity)),
	}
	copy(snap.Snippets, r.snippets)
	copy(snap.Categories, r.categories)
	copy(snap.Activity, r.activity)
	return snap
}

// Snippet returns a copy of the snippet with the given id.
func (r *Repository) Snippet(id string) (snippet.Snippet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findSnippetLocked(id)
	if idx < 0 {
		return snippet.Snippet{}, false
	}
	return r.snippets[idx], true
}

// Category returns a copy of the category with the given id.
func (r *Repository) Category(id string) (snippet.Category, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findCategoryLocked(id)
	if idx < 0 {
		return snippet.Category{}, false
	}
	return r.categories[idx], true
}

// resolveCategoryLocked maps an input category id to a stored one: empty
// becomes the uncategorized sentinel, anything else must resolve to a live
// category.
func (r *Repository) resolveCategoryLocked(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == snippet.CategoryUncategorized {
		return snippet.CategoryUncategorized, nil
	}
	if r.findCategoryLocked(id) < 0 {
		return "", errors.NewCategoryNotFound(id)
	}
	return id, nil
}

func (r *Repository) findSnippetLocked(id string) int {
	for i := range r.snippets {
		if r.snippets[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) findCategoryLocked(id string) int {
	for i := range r.categories {
		if r.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) countReferencesLocked(categoryID string) int {
	n := 0
	for i := range r.snippets {
		if r.snippets[i].CategoryID == categoryID {
			n++
		}
	}
	return n
}

// recordActivityLocked prepends an activity record. The log is append-only
// and newest-first; records are never reordered or removed.
func (r *Repository) recordActivityLocked(snippetID string, action snippet.Action, ts time.Time) {
	rec := snippet.ActivityRecord{
		SnippetID: snippetID,
		Action:    action,
		Timestamp: ts,
	}
	r.activity = append([]snippet.ActivityRecord{rec}, r.activity...)
}

// newULID generates a ULID stamped with ts.
func newULID(ts time.Time) string {
	return ulid.MustNew(ulid.Timestamp(ts), ulid.Monotonic(rand.Reader, 0)).String()
}
