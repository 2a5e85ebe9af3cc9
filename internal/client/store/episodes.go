package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/caminho-app/caminho/internal/client/models"
	"github.com/caminho-app/caminho/internal/dbx"
)

// EpisodeRepo caches the remote catalogue for offline listing and filtering.
type EpisodeRepo struct {
	db *sql.DB
}

// ReplaceAll swaps the cached catalogue for the given snapshot. The swap is
// transactional so a failed refresh never leaves a half-empty cache.
func (r *EpisodeRepo) ReplaceAll(ctx context.Context, items []models.ContentItem) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM episodes`); err != nil {
			return fmt.Errorf("clearing episode cache: %w", err)
		}

		for _, it := range items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO episodes
				  (id, title, subtitle, description, type, image_url, audio_url,
				   duration, action_url, download_resource_url, content_body, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				it.ID, it.Title, it.Subtitle, it.Description, string(it.Type),
				it.ImageURL, it.AudioURL, it.Duration, it.ActionURL,
				it.DownloadResourceURL, it.ContentBody, it.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("caching episode %s: %w", it.ID, err)
			}
		}
		return nil
	})
}

// List returns the cached catalogue, newest first.
func (r *EpisodeRepo) List(ctx context.Context) ([]models.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, subtitle, description, type, image_url, audio_url,
		       duration, action_url, download_resource_url, content_body, created_at
		FROM episodes
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing cached episodes: %w", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		var it models.ContentItem
		var typ string
		if err := rows.Scan(
			&it.ID, &it.Title, &it.Subtitle, &it.Description, &typ,
			&it.ImageURL, &it.AudioURL, &it.Duration, &it.ActionURL,
			&it.DownloadResourceURL, &it.ContentBody, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning episode row: %w", err)
		}
		it.Type = models.ContentType(typ)
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating episode rows: %w", err)
	}
	return items, nil
}
