package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// PlaylistRepository implements [models.ContentStore] on SQLite.
//
// Handles playlist CRUD and member ordering; multi-row writes run in a single transaction.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// ListPlaylists returns every playlist id in creation order.
func (r *PlaylistRepository) ListPlaylists(ctx context.Context) ([]models.PlaylistID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM playlists ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var ids []models.PlaylistID
	for rows.Next() {
		var id models.PlaylistID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// CreatePlaylist inserts a new, empty playlist and returns its id.
func (r *PlaylistRepository) CreatePlaylist(ctx context.Context, name string) (models.PlaylistID, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: playlist name is empty", shared.ErrInvalidValues)
	}

	now := time.Now()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO playlists (name, thumbnail, created_at, updated_at) VALUES (?, '', ?, ?)`,
		name, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %q", shared.ErrNameInUse, name)
		}
		return 0, fmt.Errorf("failed to insert playlist: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read playlist id: %w", err)
	}
	return models.PlaylistID(id), nil
}

// DeletePlaylist removes a playlist and its members. A missing playlist is not an error.
func (r *PlaylistRepository) DeletePlaylist(ctx context.Context, id models.PlaylistID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_members WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	return tx.Commit()
}

// GetPlaylistAttr reads one scalar attribute of a playlist.
func (r *PlaylistRepository) GetPlaylistAttr(ctx context.Context, id models.PlaylistID, attr models.PlaylistAttr) (string, error) {
	column, err := attrColumn(attr)
	if err != nil {
		return "", err
	}

	var value string
	err = r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM playlists WHERE id = ?`, column), id).Scan(&value)
	if err == sql.ErrNoRows {
		return "", playlistNotFound(id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read playlist %s: %w", column, err)
	}
	return value, nil
}

// SetPlaylistAttr writes one scalar attribute of a playlist.
func (r *PlaylistRepository) SetPlaylistAttr(ctx context.Context, id models.PlaylistID, attr models.PlaylistAttr, value string) error {
	column, err := attrColumn(attr)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE playlists SET %s = ?, updated_at = ? WHERE id = ?`, column),
		value, time.Now(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", shared.ErrNameInUse, value)
		}
		return fmt.Errorf("failed to update playlist %s: %w", column, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return playlistNotFound(id)
	}
	return nil
}

// ListMembers returns the member ids of a playlist ordered by their order index.
func (r *PlaylistRepository) ListMembers(ctx context.Context, playlist models.PlaylistID) ([]models.MemberID, error) {
	exists, err := rowExists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM playlists WHERE id = ?)`, playlist)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, playlistNotFound(playlist)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM playlist_members WHERE playlist_id = ? ORDER BY play_order ASC, id ASC`,
		playlist,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []models.MemberID{}
	for rows.Next() {
		var id models.MemberID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return members, nil
}

// GetMember retrieves one member of a playlist.
func (r *PlaylistRepository) GetMember(ctx context.Context, playlist models.PlaylistID, member models.MemberID) (*models.PlaylistItem, error) {
	item := &models.PlaylistItem{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, playlist_id, content_id, play_order FROM playlist_members WHERE playlist_id = ? AND id = ?`,
		playlist, member,
	).Scan(&item.MemberID, &item.PlaylistID, &item.ContentID, &item.Order)
	if err == sql.ErrNoRows {
		return nil, memberNotFound(playlist, member)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	return item, nil
}

// CountMembers returns the number of members in a playlist.
func (r *PlaylistRepository) CountMembers(ctx context.Context, playlist models.PlaylistID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlist_members WHERE playlist_id = ?`, playlist).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// AddMember appends a content item to the end of a playlist and returns the new member id.
func (r *PlaylistRepository) AddMember(ctx context.Context, playlist models.PlaylistID, content models.ContentID) (models.MemberID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := rowExists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM playlists WHERE id = ?)`, playlist)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, playlistNotFound(playlist)
	}

	exists, err = rowExists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM content_items WHERE id = ?)`, content)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, contentNotFound(content)
	}

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlist_members WHERE playlist_id = ?`, playlist).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO playlist_members (playlist_id, content_id, play_order, created_at) VALUES (?, ?, ?, ?)`,
		playlist, content, next, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read member id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit member insert: %w", err)
	}
	return models.MemberID(id), nil
}

// RemoveMember deletes a member and closes the gap it leaves in the order indices.
//
// Removing a member that does not exist is not an error.
func (r *PlaylistRepository) RemoveMember(ctx context.Context, playlist models.PlaylistID, member models.MemberID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var order int
	err = tx.QueryRowContext(ctx,
		`SELECT play_order FROM playlist_members WHERE playlist_id = ? AND id = ?`,
		playlist, member,
	).Scan(&order)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read member order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_members WHERE id = ?`, member); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE playlist_members SET play_order = play_order - 1 WHERE playlist_id = ? AND play_order > ?`,
		playlist, order,
	); err != nil {
		return fmt.Errorf("failed to compact member order: %w", err)
	}

	return tx.Commit()
}

// SetMemberOrder writes the order index of a single member.
func (r *PlaylistRepository) SetMemberOrder(ctx context.Context, playlist models.PlaylistID, member models.MemberID, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: negative order index %d", shared.ErrInvalidValues, index)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE playlist_members SET play_order = ? WHERE playlist_id = ? AND id = ?`,
		index, playlist, member,
	)
	if err != nil {
		return fmt.Errorf("failed to update member order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return memberNotFound(playlist, member)
	}
	return nil
}

func attrColumn(attr models.PlaylistAttr) (string, error) {
	switch attr {
	case models.AttrName:
		return "name", nil
	case models.AttrThumbnail:
		return "thumbnail", nil
	default:
		return "", fmt.Errorf("%w: unknown playlist attribute %d", shared.ErrInvalidValues, attr)
	}
}
