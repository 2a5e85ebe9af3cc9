package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/caminho-app/caminho/internal/dbx"
)

// PositionRepo persists per-track listening positions so playback can resume
// across sessions.
type PositionRepo struct {
	db dbx.DBTX
}

func (r *PositionRepo) Save(ctx context.Context, trackID string, seconds float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO positions (track_id, seconds, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(track_id) DO UPDATE SET seconds = excluded.seconds, updated_at = CURRENT_TIMESTAMP
	`, trackID, seconds)
	if err != nil {
		return fmt.Errorf("saving position for %s: %w", trackID, err)
	}
	return nil
}

// Get returns the saved position for a track, or 0 when none exists.
func (r *PositionRepo) Get(ctx context.Context, trackID string) (float64, error) {
	var seconds float64
	err := r.db.QueryRowContext(ctx, `SELECT seconds FROM positions WHERE track_id = ?`, trackID).Scan(&seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading position for %s: %w", trackID, err)
	}
	return seconds, nil
}
