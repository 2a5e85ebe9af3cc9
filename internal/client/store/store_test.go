package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/caminho-app/caminho/internal/client/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "file:storetest?mode=memory&cache=shared")
	require.NoError(t, err)
	s.db.SetMaxOpenConns(1)
	s.db.SetMaxIdleConns(1)
	t.Cleanup(func() {
		_, _ = s.db.Exec(`DELETE FROM episodes`)
		_, _ = s.db.Exec(`DELETE FROM positions`)
		_ = s.Close()
	})
	return s
}

func TestEpisodes_ReplaceAllAndList(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Episodes.ReplaceAll(ctx, []models.ContentItem{
		{ID: "e1", Title: "Primeiro", Type: models.ContentTypePodcast, Duration: 120, CreatedAt: older},
		{ID: "e2", Title: "Segundo", Type: models.ContentTypePodcast, Duration: 95, CreatedAt: newer},
	}))

	items, err := s.Episodes.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "e2", items[0].ID, "newest first")
	require.Equal(t, models.ContentTypePodcast, items[0].Type)

	// A second snapshot fully replaces the first.
	require.NoError(t, s.Episodes.ReplaceAll(ctx, []models.ContentItem{
		{ID: "e3", Title: "Terceiro", Type: models.ContentTypeEstudo, CreatedAt: newer},
	}))
	items, err = s.Episodes.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "e3", items[0].ID)
}

func TestPositions_SaveGetUpsert(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	got, err := s.Positions.Get(ctx, "missing")
	require.NoError(t, err)
	require.Zero(t, got)

	require.NoError(t, s.Positions.Save(ctx, "e1", 42.5))
	require.NoError(t, s.Positions.Save(ctx, "e1", 61.0))

	got, err = s.Positions.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, 61.0, got)
}
