// Package query provides read-only derivations over the repository state.
// Nothing here mutates; every call works on the latest committed snapshot,
// so results are always consistent with the most recent mutation.
package query

import (
	"sort"
	"strings"

	"github.com/snipstash/snipstash/internal/errors"
	"github.com/snipstash/snipstash/internal/snippet"
	"github.com/snipstash/snipstash/internal/store"
)

// SortMode selects the ordering of search results.
type SortMode string

const (
	// SortRelevance keeps the natural newest-created-first order among
	// matches. There is no scoring.
	SortRelevance SortMode = "relevance"

	// SortDate orders by descending DateModified.
	SortDate SortMode = "date"

	// SortUsage orders by descending UsageCount.
	SortUsage SortMode = "usage"
)

// Engine answers queries over a Repository.
type Engine struct {
	repo *store.Repository
}

// NewEngine creates a query engine over the given repository.
func NewEngine(repo *store.Repository) *Engine {
	return &Engine{repo: repo}
}

// GetByID returns the snippet with the given id, if it exists.
func (e *Engine) GetByID(id string) (snippet.Snippet, bool) {
	return e.repo.Snippet(id)
}

// ByCategory returns snippets in the given category, preserving the
// repository's newest-created-first order. Asking for the uncategorized
// sentinel also returns snippets whose category no longer resolves, since
// categories can be deleted out from under old data in import flows.
func (e *Engine) ByCategory(categoryID string) []snippet.Snippet {
	snap := e.repo.Snapshot()

	if categoryID == snippet.CategoryUncategorized {
		live := make(map[string]bool, len(snap.Categories))
		for _, c := range snap.Categories {
			live[c.ID] = true
		}
		out := make([]snippet.Snippet, 0)
		for _, s := range snap.Snippets {
			if s.CategoryID == snippet.CategoryUncategorized || !live[s.CategoryID] {
				out = append(out, s)
			}
		}
		return out
	}

	out := make([]snippet.Snippet, 0)
	for _, s := range snap.Snippets {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out
}

// Favorites returns favorite snippets in their natural order.
func (e *Engine) Favorites() []snippet.Snippet {
	snap := e.repo.Snapshot()

	out := make([]snippet.Snippet, 0)
	for _, s := range snap.Snippets {
		if s.IsFavorite {
			out = append(out, s)
		}
	}
	return out
}

// SearchInput contains parameters for Search.
type SearchInput struct {
	Query      string
	CategoryID string   // empty means no category restriction
	Sort       SortMode // empty means relevance
}

// Search finds snippets whose title or content contains the query,
// case-insensitively. An empty or whitespace-only query yields no results;
// callers wanting "everything" should use ByCategory or the snapshot.
func (e *Engine) Search(input SearchInput) ([]snippet.Snippet, error) {
	mode := input.Sort
	if mode == "" {
		mode = SortRelevance
	}
	if mode != SortRelevance && mode != SortDate && mode != SortUsage {
		return nil, errors.NewInvalidRequest("sort must be one of: relevance, date, usage")
	}

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return []snippet.Snippet{}, nil
	}

	snap := e.repo.Snapshot()

	matches := make([]snippet.Snippet, 0)
	for _, s := range snap.Snippets {
		if input.CategoryID != "" && s.CategoryID != input.CategoryID {
			continue
		}
		if s.Matches(query) {
			matches = append(matches, s)
		}
	}

	switch mode {
	case SortDate:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].DateModified.After(matches[j].DateModified)
		})
	case SortUsage:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].UsageCount > matches[j].UsageCount
		})
	case SortRelevance:
		// Natural order is already the retention order.
	}

	return matches, nil
}

// RecentlyUsed replays the activity log's copy events, newest first, and
// resolves each to the snippet's current state. A snippet copied twice
// appears twice; copies of since-deleted snippets are skipped silently.
// A non-positive limit falls back to the repository's configured window.
func (e *Engine) RecentlyUsed(limit int) []snippet.Snippet {
	if limit <= 0 {
		limit = e.repo.RecentLimit()
	}

	snap := e.repo.Snapshot()

	byID := make(map[string]snippet.Snippet, len(snap.Snippets))
	for _, s := range snap.Snippets {
		byID[s.ID] = s
	}

	out := make([]snippet.Snippet, 0, limit)
	taken := 0
	for _, rec := range snap.Activity {
		if rec.Action != snippet.ActionCopied {
			continue
		}
		if taken == limit {
			break
		}
		taken++
		if s, ok := byID[rec.SnippetID]; ok {
			out = append(out, s)
		}
	}
	return out
}
