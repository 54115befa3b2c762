package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/playlists"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ContentAdd registers a content item in the catalog. Catalog writes go straight to the store;
// only playlist operations run through the task bridge.
func (r *Runner) ContentAdd(ctx context.Context, cmd *cli.Command) error {
	kind, err := models.ParseKind(cmd.String("kind"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	item := &models.ContentItem{
		Kind:   kind,
		Title:  cmd.String("title"),
		Path:   cmd.String("path"),
		Rating: int(cmd.Int("rating")),
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	if err := r.open(cmd); err != nil {
		return err
	}
	id, err := r.store.CreateContent(ctx, item)
	if err != nil {
		return err
	}
	return r.writePlain("✓ added %s content %d: %s\n", kind, id, item.Title)
}

// ContentList prints the catalog, optionally filtered by --kind.
func (r *Runner) ContentList(ctx context.Context, cmd *cli.Command) error {
	var filter *models.Kind
	if cmd.IsSet("kind") {
		kind, err := models.ParseKind(cmd.String("kind"))
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		filter = &kind
	}

	if err := r.open(cmd); err != nil {
		return err
	}
	items, err := r.store.ListContent(ctx, filter)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if items == nil {
			items = []*models.ContentItem{}
		}
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	for _, item := range items {
		if err := r.writePlain("%-6d %-6s %-32s %d★  %s\n", item.ID, item.Kind, item.Title, item.Rating, item.Path); err != nil {
			return err
		}
	}
	return nil
}

// ContentRate applies ID=RATING pairs as one update batch. Every rated item must be a member of
// the playlist named by --playlist.
func (r *Runner) ContentRate(ctx context.Context, cmd *cli.Command) error {
	updates, err := parseRatings(cmd.Args().Slice())
	if err != nil {
		return err
	}
	playlist, err := parsePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	if err := r.open(cmd); err != nil {
		return err
	}
	n, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[int]) error {
		return r.manager.UpdateBatch(s, playlist, updates, cb)
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ rated %d content items\n", n)
}

func parseRatings(args []string) ([]models.ContentUpdate, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: expected ID=RATING pairs", shared.ErrMissingArgument)
	}

	updates := make([]models.ContentUpdate, 0, len(args))
	for _, arg := range args {
		idPart, ratingPart, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not ID=RATING", shared.ErrInvalidArgument, arg)
		}
		id, err := parseContentID(idPart)
		if err != nil {
			return nil, err
		}
		rating, err := strconv.Atoi(ratingPart)
		if err != nil || rating < 0 || rating > 5 {
			return nil, fmt.Errorf("%w: rating for content %d must be 0-5, got %q", shared.ErrInvalidArgument, id, ratingPart)
		}
		updates = append(updates, models.ContentUpdate{ID: id, Rating: &rating})
	}
	return updates, nil
}
