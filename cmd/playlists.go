package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/playlists"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every playlist with its member count.
//
// Counts are submitted from the listing callback, so a single await covers both rounds.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(cmd); err != nil {
		return err
	}

	scope := tasks.NewScope("cli")
	defer scope.Close()

	var (
		summaries []*models.PlaylistSummary
		failure   error
	)
	onError := func(e *tasks.Error) {
		if failure == nil {
			failure = e
		}
	}

	err := r.manager.GetPlaylists(scope, playlists.Callbacks[[]*models.Playlist]{
		OnSuccess: func(pls []*models.Playlist) {
			for _, p := range pls {
				name, _ := p.Name(ctx)
				thumb, _ := p.Thumbnail(ctx)
				s := &models.PlaylistSummary{ID: p.ID(), Name: name, Thumbnail: thumb}
				summaries = append(summaries, s)

				if err := r.manager.Count(scope, p.ID(), playlists.Callbacks[int]{
					OnSuccess: func(n int) { s.NumberOfItems = n },
					OnError:   onError,
				}); err != nil {
					onError(tasks.NewError(err))
				}
			}
		},
		OnError: onError,
	})
	if err != nil {
		return err
	}
	if err := r.await(ctx); err != nil {
		return err
	}
	if failure != nil {
		return failure
	}

	if cmd.Bool("json") {
		if summaries == nil {
			summaries = []*models.PlaylistSummary{}
		}
		return r.writeJSON(summaries, cmd.Bool("pretty"))
	}

	if len(summaries) == 0 {
		return r.writePlain("no playlists\n")
	}
	for _, s := range summaries {
		line := fmt.Sprintf("%-6d %-32s %4d items", s.ID, s.Name, s.NumberOfItems)
		if s.Thumbnail != "" {
			line += "  " + s.Thumbnail
		}
		if err := r.writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// PlaylistsCreate creates an empty playlist.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(cmd); err != nil {
		return err
	}

	p, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[*models.Playlist]) error {
		return r.manager.CreatePlaylist(s, cmd.Args().First(), cb)
	})
	if err != nil {
		return err
	}

	name, _ := p.Name(ctx)
	r.logger.Info("playlist created", "id", p.ID(), "name", name)
	return r.writePlain("✓ created playlist %d: %s\n", p.ID(), name)
}

// PlaylistsDelete deletes a playlist and its members.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().First())
	if err != nil {
		return err
	}
	if err := r.open(cmd); err != nil {
		return err
	}

	if _, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[models.PlaylistID]) error {
		return r.manager.RemovePlaylist(s, id, cb)
	}); err != nil {
		return err
	}
	return r.writePlain("✓ deleted playlist %d\n", id)
}

// PlaylistsRename renames a playlist.
func (r *Runner) PlaylistsRename(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	if err := r.open(cmd); err != nil {
		return err
	}

	name, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[string]) error {
		return r.manager.SetName(s, id, cmd.Args().Get(1), cb)
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ renamed playlist %d to %s\n", id, name)
}

// PlaylistsThumbnail sets the thumbnail of a playlist, or clears it with --clear.
func (r *Runner) PlaylistsThumbnail(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	ref := cmd.Args().Get(1)
	if cmd.Bool("clear") {
		ref = ""
	} else if ref == "" {
		return fmt.Errorf("%w: thumbnail path is required, use --clear to remove it", shared.ErrMissingArgument)
	}

	if err := r.open(cmd); err != nil {
		return err
	}

	value, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[string]) error {
		return r.manager.SetThumbnail(s, id, ref, cb)
	})
	if err != nil {
		return err
	}
	if value == "" {
		return r.writePlain("✓ cleared thumbnail of playlist %d\n", id)
	}
	return r.writePlain("✓ thumbnail of playlist %d set to %s\n", id, value)
}
