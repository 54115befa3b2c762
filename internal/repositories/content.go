package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// ContentRepository implements [models.ContentCatalog] on SQLite.
type ContentRepository struct {
	db *sql.DB
}

// NewContentRepository creates a new ContentRepository with the given database connection
func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// CreateContent inserts a content item and assigns its id.
func (r *ContentRepository) CreateContent(ctx context.Context, item *models.ContentItem) (models.ContentID, error) {
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidValues, err)
	}

	now := time.Now()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO content_items (kind, title, path, rating, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		item.Kind.String(), item.Title, item.Path, item.Rating, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert content item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read content id: %w", err)
	}

	item.ID = models.ContentID(id)
	return item.ID, nil
}

// GetContent retrieves a content item by id.
func (r *ContentRepository) GetContent(ctx context.Context, id models.ContentID) (*models.ContentItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, title, path, rating FROM content_items WHERE id = ?`, id,
	)

	item, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, contentNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateContent writes the scalar fields of an existing content item.
func (r *ContentRepository) UpdateContent(ctx context.Context, item *models.ContentItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidValues, err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE content_items SET kind = ?, title = ?, path = ?, rating = ?, updated_at = ? WHERE id = ?`,
		item.Kind.String(), item.Title, item.Path, item.Rating, time.Now(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update content item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return contentNotFound(item.ID)
	}
	return nil
}

// ListContent returns content items, optionally restricted to one kind.
func (r *ContentRepository) ListContent(ctx context.Context, kind *models.Kind) ([]*models.ContentItem, error) {
	query := `SELECT id, kind, title, path, rating FROM content_items`
	args := []any{}

	if kind != nil {
		query += " WHERE kind = ?"
		args = append(args, kind.String())
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// scanContent scans a single row into a [models.ContentItem]
func scanContent(s scanner) (*models.ContentItem, error) {
	var (
		item models.ContentItem
		kind string
	)

	err := s.Scan(&item.ID, &kind, &item.Title, &item.Path, &item.Rating)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan content item: %w", err)
	}

	if item.Kind, err = models.ParseKind(kind); err != nil {
		return nil, fmt.Errorf("failed to scan content item: %w", err)
	}
	return &item, nil
}
