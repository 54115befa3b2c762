// package repositories provides persistence layer implementations for the playlist store.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/mattn/go-sqlite3"
)

var (
	_ models.Store = (*Store)(nil)
	_ models.Store = (*MemoryStore)(nil)
)

// Store implements [models.Store] on a SQLite database.
type Store struct {
	*PlaylistRepository
	*ContentRepository
}

// NewStore creates a new Store with the given database connection
func NewStore(db *sql.DB) *Store {
	return &Store{
		PlaylistRepository: NewPlaylistRepository(db),
		ContentRepository:  NewContentRepository(db),
	}
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// rowExists runs a SELECT EXISTS query and returns its result.
func rowExists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var exists bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// querier is satisfied by both [sql.DB] and [sql.Tx].
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func playlistNotFound(id models.PlaylistID) error {
	return fmt.Errorf("%w: playlist %d", shared.ErrNotFound, id)
}

func memberNotFound(playlist models.PlaylistID, member models.MemberID) error {
	return fmt.Errorf("%w: member %d in playlist %d", shared.ErrNotFound, member, playlist)
}

func contentNotFound(id models.ContentID) error {
	return fmt.Errorf("%w: content item %d", shared.ErrNotFound, id)
}
