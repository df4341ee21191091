package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/snipstash/snipstash/internal/config"
	"github.com/snipstash/snipstash/internal/entitlement"
	stasherrors "github.com/snipstash/snipstash/internal/errors"
	"github.com/snipstash/snipstash/internal/kv"
)

// TestRoundTrip exercises a full session: mutate, close, reopen over the
// same durable store, and check that everything came back.
func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	repo, err := Open(ctx, mem, entitlement.Static(true), config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)

	cat, err := repo.AddCategory(ctx, AddCategoryInput{Name: "Shell", Color: "#112233"})
	require.NoError(t, err)

	first, err := repo.AddSnippet(ctx, AddSnippetInput{Title: "kubeconfig", Content: "export KUBECONFIG=~/.kube/dev", CategoryID: cat.ID})
	require.NoError(t, err)
	second, err := repo.AddSnippet(ctx, AddSnippetInput{Title: "tarball", Content: "tar -xzf archive.tgz", IsFavorite: true})
	require.NoError(t, err)

	_, err = repo.RecordUsage(ctx, first.ID)
	require.NoError(t, err)
	_, err = repo.ToggleFavorite(ctx, first.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Close())

	reopened, err := Open(ctx, mem, entitlement.Static(true), config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	snap := reopened.Snapshot()
	require.Len(t, snap.Snippets, 2)
	require.Equal(t, second.ID, snap.Snippets[0].ID, "order must survive the round trip")
	require.Equal(t, first.ID, snap.Snippets[1].ID)

	got := snap.Snippets[1]
	require.Equal(t, "kubeconfig", got.Title)
	require.Equal(t, cat.ID, got.CategoryID)
	require.Equal(t, 1, got.UsageCount)
	require.NotNil(t, got.LastUsed)
	require.True(t, got.IsFavorite)
	require.True(t, got.DateCreated.Equal(first.DateCreated), "timestamps must survive serialization")

	require.Len(t, snap.Categories, 8, "seven defaults plus the added category")
	require.Equal(t, cat.ID, snap.Categories[7].ID)

	// created, created, copied — newest first.
	require.Len(t, snap.Activity, 3)
	require.Equal(t, first.ID, snap.Activity[0].SnippetID)
}

func TestOpen_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Put(ctx, kv.SlotSnippets, "{definitely not an array"))

	_, err := Open(ctx, mem, entitlement.Static(true), config.DefaultConfig(), zerolog.Nop())
	require.Error(t, err)
	require.True(t, stasherrors.Is(err, stasherrors.ErrPersistence), "corrupt blob must surface as a persistence error, got %v", err)
}

// TestFlushFailureKeepsStateAuthoritative verifies a failed write never
// rolls back or blocks mutations, and that a later flush catches up.
func TestFlushFailureKeepsStateAuthoritative(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	repo, err := Open(ctx, mem, entitlement.Static(true), config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)

	mem.FailPuts(errors.New("disk full"))

	s, err := repo.AddSnippet(ctx, AddSnippetInput{Title: "survivor", Content: "echo hi"})
	require.NoError(t, err, "mutations must not fail when flushing fails")

	require.Error(t, repo.Flush(ctx))

	got, ok := repo.Snippet(s.ID)
	require.True(t, ok, "in-memory state stays authoritative after a failed flush")
	require.Equal(t, "survivor", got.Title)

	mem.FailPuts(nil)
	require.NoError(t, repo.Close(), "final flush succeeds once the store recovers")

	reopened, err := Open(ctx, mem, entitlement.Static(true), config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	_, ok = reopened.Snippet(s.ID)
	require.True(t, ok)
}

func TestCloseIsIdempotent(t *testing.T) {
	repo, err := Open(context.Background(), kv.NewMemory(), entitlement.Static(true), config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close())
}

func TestMutationAfterCloseDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, kv.NewMemory(), entitlement.Static(true), config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// The dirty channel is closed at this point; marking must be a no-op.
	_, err = repo.AddSnippet(ctx, AddSnippetInput{Title: "late", Content: "body"})
	require.NoError(t, err)
}
