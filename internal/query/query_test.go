package query

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/snipstash/snipstash/internal/config"
	"github.com/snipstash/snipstash/internal/entitlement"
	stasherrors "github.com/snipstash/snipstash/internal/errors"
	"github.com/snipstash/snipstash/internal/kv"
	"github.com/snipstash/snipstash/internal/snippet"
	"github.com/snipstash/snipstash/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Repository) {
	t.Helper()
	return newTestEngineWithStore(t, kv.NewMemory(), config.DefaultConfig())
}

func newTestEngineWithStore(t *testing.T, mem kv.Store, cfg *config.Config) (*Engine, *store.Repository) {
	t.Helper()
	repo, err := store.Open(context.Background(), mem, entitlement.Static(true), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return NewEngine(repo), repo
}

func mustAdd(t *testing.T, repo *store.Repository, title, content, categoryID string) *snippet.Snippet {
	t.Helper()
	s, err := repo.AddSnippet(context.Background(), store.AddSnippetInput{
		Title:      title,
		Content:    content,
		CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("AddSnippet(%q) failed: %v", title, err)
	}
	return s
}

func mustCopy(t *testing.T, repo *store.Repository, id string, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		if _, err := repo.RecordUsage(context.Background(), id); err != nil {
			t.Fatalf("RecordUsage(%s) failed: %v", id, err)
		}
	}
}

func titles(snippets []snippet.Snippet) []string {
	out := make([]string, len(snippets))
	for i, s := range snippets {
		out[i] = s.Title
	}
	return out
}

func TestGetByID(t *testing.T) {
	engine, repo := newTestEngine(t)
	s := mustAdd(t, repo, "known", "body", "")

	got, ok := engine.GetByID(s.ID)
	if !ok || got.Title != "known" {
		t.Errorf("GetByID(%s) = %+v, %v; want the stored snippet", s.ID, got, ok)
	}

	if _, ok := engine.GetByID("missing"); ok {
		t.Error("GetByID(missing) = found, want not found")
	}

	// Reads always see the latest committed state.
	if _, err := repo.UpdateSnippet(context.Background(), s.ID, store.UpdateSnippetInput{Title: ptr("renamed")}); err != nil {
		t.Fatalf("UpdateSnippet failed: %v", err)
	}
	got, _ = engine.GetByID(s.ID)
	if got.Title != "renamed" {
		t.Errorf("Title after update = %q, want renamed", got.Title)
	}
}

func TestByCategory(t *testing.T) {
	engine, repo := newTestEngine(t)
	mustAdd(t, repo, "office one", "a", "work")
	mustAdd(t, repo, "loose", "b", "")
	mustAdd(t, repo, "office two", "c", "work")

	got := titles(engine.ByCategory("work"))
	if len(got) != 2 || got[0] != "office two" || got[1] != "office one" {
		t.Errorf("ByCategory(work) = %v, want [office two office one]", got)
	}

	got = titles(engine.ByCategory(snippet.CategoryUncategorized))
	if len(got) != 1 || got[0] != "loose" {
		t.Errorf("ByCategory(uncategorized) = %v, want [loose]", got)
	}

	if n := len(engine.ByCategory("finance")); n != 0 {
		t.Errorf("ByCategory(finance) = %d results, want 0", n)
	}
}

func TestFavorites(t *testing.T) {
	engine, repo := newTestEngine(t)
	mustAdd(t, repo, "plain", "a", "")
	fav := mustAdd(t, repo, "starred", "b", "")
	if _, err := repo.ToggleFavorite(context.Background(), fav.ID); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}

	got := titles(engine.Favorites())
	if len(got) != 1 || got[0] != "starred" {
		t.Errorf("Favorites() = %v, want [starred]", got)
	}
}

func TestSearch(t *testing.T) {
	engine, repo := newTestEngine(t)
	mustAdd(t, repo, "Docker cleanup", "docker system prune -af", "work")
	mustAdd(t, repo, "Grep trick", "grep -rn docker .", "")
	mustAdd(t, repo, "Budget", "monthly spreadsheet", "finance")

	tests := []struct {
		name  string
		input SearchInput
		want  []string
	}{
		{
			name:  "matches title and content",
			input: SearchInput{Query: "docker"},
			want:  []string{"Grep trick", "Docker cleanup"},
		},
		{
			name:  "case insensitive",
			input: SearchInput{Query: "DOCKER"},
			want:  []string{"Grep trick", "Docker cleanup"},
		},
		{
			name:  "category restricted",
			input: SearchInput{Query: "docker", CategoryID: "work"},
			want:  []string{"Docker cleanup"},
		},
		{
			name:  "empty query yields nothing",
			input: SearchInput{Query: "   "},
			want:  []string{},
		},
		{
			name:  "no matches",
			input: SearchInput{Query: "kubernetes"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Search(tt.input)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			gotTitles := titles(got)
			if len(gotTitles) != len(tt.want) {
				t.Fatalf("Search = %v, want %v", gotTitles, tt.want)
			}
			for i := range tt.want {
				if gotTitles[i] != tt.want[i] {
					t.Errorf("Search[%d] = %q, want %q", i, gotTitles[i], tt.want[i])
				}
			}
		})
	}
}

func TestSearch_UsageSort(t *testing.T) {
	engine, repo := newTestEngine(t)
	cold := mustAdd(t, repo, "cold alias", "alias g=git", "")
	hot := mustAdd(t, repo, "hot alias", "alias k=kubectl", "")
	mustCopy(t, repo, hot.ID, 3)
	mustCopy(t, repo, cold.ID, 1)

	got, err := engine.Search(SearchInput{Query: "alias", Sort: SortUsage})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	want := []string{"hot alias", "cold alias"}
	if len(got) != 2 || got[0].Title != want[0] || got[1].Title != want[1] {
		t.Errorf("usage sort = %v, want %v", titles(got), want)
	}
}

func TestSearch_DateSort(t *testing.T) {
	engine, repo := newTestEngine(t)
	oldest := mustAdd(t, repo, "oldest note", "shared text", "")
	mustAdd(t, repo, "middle note", "shared text", "")
	if _, err := repo.UpdateSnippet(context.Background(), oldest.ID, store.UpdateSnippetInput{Content: ptr("shared text v2")}); err != nil {
		t.Fatalf("UpdateSnippet failed: %v", err)
	}

	got, err := engine.Search(SearchInput{Query: "note", Sort: SortDate})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// The edited snippet has the newest DateModified.
	if len(got) != 2 || got[0].Title != "oldest note" {
		t.Errorf("date sort = %v, want oldest note first after its edit", titles(got))
	}
}

func TestSearch_InvalidSort(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Search(SearchInput{Query: "x", Sort: "alphabetical"})
	if !stasherrors.Is(err, stasherrors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestRecentlyUsed(t *testing.T) {
	engine, repo := newTestEngine(t)
	a := mustAdd(t, repo, "A", "a", "")
	b := mustAdd(t, repo, "B", "b", "")

	// Copy order: A, then B, then A again.
	mustCopy(t, repo, a.ID, 1)
	mustCopy(t, repo, b.ID, 1)
	mustCopy(t, repo, a.ID, 1)

	got := titles(engine.RecentlyUsed(5))
	want := []string{"A", "B", "A"}
	if len(got) != 3 {
		t.Fatalf("RecentlyUsed = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RecentlyUsed[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecentlyUsed_SkipsDeleted(t *testing.T) {
	engine, repo := newTestEngine(t)
	keep := mustAdd(t, repo, "keep", "a", "")
	gone := mustAdd(t, repo, "gone", "b", "")
	mustCopy(t, repo, keep.ID, 1)
	mustCopy(t, repo, gone.ID, 1)
	if err := repo.DeleteSnippet(context.Background(), gone.ID); err != nil {
		t.Fatalf("DeleteSnippet failed: %v", err)
	}

	got := titles(engine.RecentlyUsed(5))
	if len(got) != 1 || got[0] != "keep" {
		t.Errorf("RecentlyUsed = %v, want [keep]", got)
	}
}

func TestRecentlyUsed_Limit(t *testing.T) {
	engine, repo := newTestEngine(t)
	a := mustAdd(t, repo, "A", "a", "")
	b := mustAdd(t, repo, "B", "b", "")
	mustCopy(t, repo, a.ID, 1)
	mustCopy(t, repo, b.ID, 1)
	mustCopy(t, repo, a.ID, 1)

	got := titles(engine.RecentlyUsed(2))
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("RecentlyUsed(2) = %v, want [A B]", got)
	}

	// Non-positive limits fall back to the default window.
	if n := len(engine.RecentlyUsed(0)); n != 3 {
		t.Errorf("RecentlyUsed(0) = %d results, want 3", n)
	}
}

func TestRecentlyUsed_ConfiguredDefaultLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RecentLimit = 2
	engine, repo := newTestEngineWithStore(t, kv.NewMemory(), cfg)

	a := mustAdd(t, repo, "A", "a", "")
	b := mustAdd(t, repo, "B", "b", "")
	mustCopy(t, repo, a.ID, 1)
	mustCopy(t, repo, b.ID, 1)
	mustCopy(t, repo, a.ID, 1)

	// No explicit limit: the configured window applies.
	got := titles(engine.RecentlyUsed(0))
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("RecentlyUsed(0) = %v, want [A B] with recent_limit 2", got)
	}

	// An explicit limit overrides the configured one.
	if n := len(engine.RecentlyUsed(3)); n != 3 {
		t.Errorf("RecentlyUsed(3) = %d results, want 3", n)
	}
}

func TestByCategory_DanglingCategoryReadsAsUncategorized(t *testing.T) {
	// A snippet can arrive from the durable store referencing a category
	// that no longer exists; it must surface under the uncategorized view.
	mem := kv.NewMemory()
	blob := `[{"id":"01ORPHAN","title":"orphan","content":"body","categoryId":"ghost",` +
		`"dateCreated":"2026-08-01T10:00:00Z","dateModified":"2026-08-01T10:00:00Z",` +
		`"isFavorite":false,"usageCount":0,"lastUsed":null}]`
	if err := mem.Put(context.Background(), kv.SlotSnippets, blob); err != nil {
		t.Fatalf("seed snippets slot: %v", err)
	}

	engine, repo := newTestEngineWithStore(t, mem, config.DefaultConfig())
	mustAdd(t, repo, "loose", "body", "")
	mustAdd(t, repo, "filed", "body", "work")

	got := titles(engine.ByCategory(snippet.CategoryUncategorized))
	if len(got) != 2 || got[0] != "loose" || got[1] != "orphan" {
		t.Errorf("ByCategory(uncategorized) = %v, want [loose orphan]", got)
	}
}

func ptr(s string) *string { return &s }
