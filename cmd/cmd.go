// submodule cmd contains command definitions
package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recently applied migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// playlistsCommand handles playlist operations
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List playlists with their member counts",
				Flags:   jsonFlags(),
				Action:  r.PlaylistsList,
			},
			{
				Name:      "create",
				Usage:     "Create an empty playlist",
				ArgsUsage: "NAME",
				Action:    r.PlaylistsCreate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a playlist and its members",
				ArgsUsage: "PLAYLIST",
				Action:    r.PlaylistsDelete,
			},
			{
				Name:      "rename",
				Usage:     "Rename a playlist",
				ArgsUsage: "PLAYLIST NAME",
				Action:    r.PlaylistsRename,
			},
			{
				Name:      "thumbnail",
				Usage:     "Set a playlist thumbnail from a file path or file:// URI",
				ArgsUsage: "PLAYLIST [PATH]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Remove the thumbnail",
					},
				},
				Action: r.PlaylistsThumbnail,
			},
		},
	}
}

// membersCommand handles playlist member operations
func membersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "members",
		Aliases: []string{"m"},
		Usage:   "Playlist member operations",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List the members of a playlist in order",
				ArgsUsage: "PLAYLIST",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (json, csv, txt, markdown)",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout (empty for playlist_{id}.{ext})",
					},
				},
				Action: r.MembersList,
			},
			{
				Name:      "add",
				Usage:     "Append content items to a playlist",
				ArgsUsage: "PLAYLIST CONTENT...",
				Action:    r.MembersAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove members from a playlist",
				ArgsUsage: "PLAYLIST MEMBER...",
				Action:    r.MembersRemove,
			},
			{
				Name:      "move",
				Usage:     "Move a member up (negative) or down (positive)",
				ArgsUsage: "PLAYLIST MEMBER",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "by",
						Usage:    "Positions to move; clamped to the ends of the playlist",
						Required: true,
					},
				},
				Action: r.MembersMove,
			},
			{
				Name:      "order",
				Usage:     "Replace the order of a playlist; every member must appear once",
				ArgsUsage: "PLAYLIST MEMBER...",
				Action:    r.MembersOrder,
			},
			{
				Name:      "check",
				Usage:     "Check that member order indices are dense",
				ArgsUsage: "PLAYLIST",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the report as JSON",
					},
				},
				Action: r.MembersCheck,
			},
		},
	}
}

// contentCommand handles content catalog operations
func contentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "content",
		Usage: "Content catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a content item",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Content kind (audio, video, image, other)",
						Value: "other",
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Display title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "path",
						Usage:    "Location of the media file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "rating",
						Usage: "Rating from 0 to 5",
					},
				},
				Action: r.ContentAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the catalog",
				Flags: append(jsonFlags(), &cli.StringFlag{
					Name:  "kind",
					Usage: "Only list items of this kind",
				}),
				Action: r.ContentList,
			},
			{
				Name:      "rate",
				Usage:     "Rate content items as one batch",
				ArgsUsage: "ID=RATING...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist the rated items belong to",
						Required: true,
					},
				},
				Action: r.ContentRate,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist management",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File the TUI logs to",
				Value: filepath.Join(os.TempDir(), "plx-tui.log"),
			},
		},
		Action: r.TUI,
	}
}

// metricsCommand serves task metrics over HTTP.
func metricsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Task metrics",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve /metrics and /health",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address; defaults to server.host:server.port from the config",
					},
					&cli.DurationFlag{
						Name:  "audit",
						Usage: "Check playlist order on this interval (0 disables)",
						Value: time.Minute,
					},
				},
				Action: r.MetricsServe,
			},
		},
	}
}
