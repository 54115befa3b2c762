package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/playlists"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MembersList prints the members of a playlist in order, in the format named by --format.
// With --output the listing is written to a file instead.
func (r *Runner) MembersList(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().First())
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.open(cmd); err != nil {
		return err
	}

	items, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[[]*models.PlaylistItem]) error {
		return r.manager.Members(s, id, cb)
	})
	if err != nil {
		return err
	}

	summary, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[*models.PlaylistSummary]) error {
		return r.manager.Summary(s, id, cb)
	})
	if err != nil {
		return err
	}
	listing := &formatter.Listing{Playlist: *summary, Items: items}

	if cmd.IsSet("output") {
		path, err := formatter.WriteExport(listing, format, cmd.String("output"))
		if err != nil {
			return err
		}
		r.logger.Info("listing written", "path", path, "format", format)
		return r.writePlain("✓ wrote %d members to %s\n", len(items), path)
	}
	return formatter.Write(r.output, listing, format)
}

// MembersAdd appends content items to a playlist. Several items run as one batch that stops at
// the first failure.
func (r *Runner) MembersAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().First())
	if err != nil {
		return err
	}
	contents, err := parseAll(cmd.Args().Tail(), parseContentID)
	if err != nil {
		return err
	}
	if err := r.open(cmd); err != nil {
		return err
	}

	if len(contents) == 1 {
		member, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[models.MemberID]) error {
			return r.manager.Add(s, id, contents[0], cb)
		})
		if err != nil {
			return err
		}
		return r.writePlain("✓ added member %d to playlist %d\n", member, id)
	}

	members, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[[]models.MemberID]) error {
		return r.manager.AddBatch(s, id, contents, cb)
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ added %d members to playlist %d\n", len(members), id)
}

// MembersRemove removes members from a playlist.
func (r *Runner) MembersRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().First())
	if err != nil {
		return err
	}
	refs, err := memberRefs(id, cmd.Args().Tail())
	if err != nil {
		return err
	}
	if err := r.open(cmd); err != nil {
		return err
	}

	if len(refs) == 1 {
		if _, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[models.MemberRef]) error {
			return r.manager.Remove(s, refs[0], cb)
		}); err != nil {
			return err
		}
		return r.writePlain("✓ removed member %d from playlist %d\n", refs[0].MemberID, id)
	}

	n, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[int]) error {
		return r.manager.RemoveBatch(s, id, refs, cb)
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ removed %d members from playlist %d\n", n, id)
}

// MembersMove shifts one member by --by positions.
func (r *Runner) MembersMove(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	member, err := parseMemberID(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	if err := r.open(cmd); err != nil {
		return err
	}

	order, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[[]models.MemberID]) error {
		return r.manager.Move(s, id, member, int(cmd.Int("by")), cb)
	})
	if err != nil {
		return err
	}
	return r.writeOrder(id, order)
}

// MembersOrder replaces the order of a playlist with the member ids given, which must name every
// member exactly once.
func (r *Runner) MembersOrder(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().First())
	if err != nil {
		return err
	}
	refs, err := memberRefs(id, cmd.Args().Tail())
	if err != nil {
		return err
	}
	if err := r.open(cmd); err != nil {
		return err
	}

	order, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[[]models.MemberID]) error {
		return r.manager.SetOrder(s, id, refs, cb)
	})
	if err != nil {
		return err
	}
	return r.writeOrder(id, order)
}

// MembersCheck audits that the order indices of a playlist are dense.
func (r *Runner) MembersCheck(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().First())
	if err != nil {
		return err
	}
	if err := r.open(cmd); err != nil {
		return err
	}

	report, err := call(ctx, r, func(s *tasks.Scope, cb playlists.Callbacks[playlists.OrderReport]) error {
		return r.manager.CheckOrder(s, id, cb)
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}
	if !report.OK() {
		return fmt.Errorf("%w: playlist %d: %s", shared.ErrInvalidValues, id, report.Problem)
	}
	return r.writePlain("✓ playlist %d: %d members in dense order\n", id, report.Members)
}

func (r *Runner) writeOrder(id models.PlaylistID, order []models.MemberID) error {
	ids := make([]string, len(order))
	for i, m := range order {
		ids[i] = m.String()
	}
	return r.writePlain("✓ playlist %d order: %s\n", id, strings.Join(ids, " "))
}

func memberRefs(playlist models.PlaylistID, args []string) ([]models.MemberRef, error) {
	members, err := parseAll(args, parseMemberID)
	if err != nil {
		return nil, err
	}
	refs := make([]models.MemberRef, len(members))
	for i, m := range members {
		refs[i] = models.MemberRef{PlaylistID: playlist, MemberID: m}
	}
	return refs, nil
}

func parseAll[T any](args []string, parse func(string) (T, error)) ([]T, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: at least one id is required", shared.ErrMissingArgument)
	}
	out := make([]T, 0, len(args))
	for _, a := range args {
		v, err := parse(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
