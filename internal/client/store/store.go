// Package store keeps a small local sqlite cache: the episode catalogue for
// offline listing and per-track playback positions.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/caminho-app/caminho/internal/client/store/migrations"
)

type Store struct {
	db        *sql.DB
	Episodes  *EpisodeRepo
	Positions *PositionRepo
}

// Open opens (or creates) the local database at dsn and brings the schema
// up to date.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating local db: %w", err)
	}

	return &Store{
		db:        db,
		Episodes:  &EpisodeRepo{db: db},
		Positions: &PositionRepo{db: db},
	}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}
