package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/repositories"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	tu "github.com/desertthunder/plx/internal/testing"
)

// run executes the CLI with a fresh runner over store and returns what it printed.
// A nil store makes the runner open the database named by the config at configPath.
func run(t *testing.T, store models.Store, configPath string, args ...string) (string, error) {
	t.Helper()
	if configPath == "" {
		configPath = filepath.Join(t.TempDir(), "missing.toml")
	}

	var out bytes.Buffer
	r := NewRunner(RunnerOpts{Store: store, Output: &out, Logger: shared.NewLogger(io.Discard)})
	argv := append([]string{"plx", "--config", configPath}, args...)
	err := newApp(r).Run(context.Background(), argv)
	return out.String(), err
}

func mustRun(t *testing.T, store models.Store, args ...string) string {
	t.Helper()
	out, err := run(t, store, "", args...)
	if err != nil {
		t.Fatalf("plx %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func memberIDs(t *testing.T, store models.Store, playlist models.PlaylistID) []string {
	t.Helper()
	ids, err := store.ListMembers(context.Background(), playlist)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// seedCatalog creates one playlist and three audio items through the CLI.
func seedCatalog(t *testing.T, store models.Store) {
	t.Helper()
	mustRun(t, store, "playlists", "create", "Road Trip")
	for _, title := range []string{"alpha", "beta", "gamma"} {
		mustRun(t, store, "content", "add", "--kind", "audio", "--title", title, "--path", "/media/"+title+".mp3")
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			store := repositories.NewMemoryStore()

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Store:  store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.metrics == nil {
				t.Error("expected a metrics collector")
			}
			if runner.manager != nil {
				t.Error("expected the manager to be opened lazily")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestParsing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", shared.ErrMissingArgument},
		{"not a number", "abc", shared.ErrInvalidArgument},
		{"zero", "0", shared.ErrInvalidArgument},
		{"negative", "-3", shared.ErrInvalidArgument},
		{"valid", "42", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePlaylistID(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("parsePlaylistID(%q) = %v, want %v", tt.in, err, tt.want)
			}
		})
	}

	t.Run("ratings", func(t *testing.T) {
		updates, err := parseRatings([]string{"3=5", "7=0"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(updates) != 2 || updates[0].ID != 3 || *updates[0].Rating != 5 || *updates[1].Rating != 0 {
			t.Errorf("unexpected updates: %+v", updates)
		}

		for _, bad := range [][]string{nil, {"3"}, {"3=9"}, {"x=1"}} {
			if _, err := parseRatings(bad); err == nil {
				t.Errorf("expected %v to be rejected", bad)
			}
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("playlists", func(t *testing.T) {
		store := repositories.NewMemoryStore()

		out := mustRun(t, store, "playlists", "create", "  Road   Trip ")
		if !strings.Contains(out, "Road Trip") {
			t.Errorf("expected the normalized name, got %q", out)
		}

		if _, err := run(t, store, "", "playlists", "create", "Road Trip"); !errors.Is(err, tasks.ErrInvalid) {
			t.Errorf("expected a duplicate name to be invalid, got %v", err)
		}

		mustRun(t, store, "playlists", "rename", "1", "Night Drive")

		out = mustRun(t, store, "playlists", "list", "--json")
		var summaries []models.PlaylistSummary
		if err := json.Unmarshal([]byte(out), &summaries); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if len(summaries) != 1 || summaries[0].Name != "Night Drive" || summaries[0].NumberOfItems != 0 {
			t.Errorf("unexpected summaries: %+v", summaries)
		}

		mustRun(t, store, "playlists", "delete", "1")
		if out := mustRun(t, store, "playlists", "list"); !strings.Contains(out, "no playlists") {
			t.Errorf("expected no playlists, got %q", out)
		}
	})

	t.Run("thumbnail", func(t *testing.T) {
		store := repositories.NewMemoryStore()
		mustRun(t, store, "playlists", "create", "Covers")
		img := tu.MustWriteFile(t, t.TempDir(), "cover.png", "png")

		out := mustRun(t, store, "playlists", "thumbnail", "1", img)
		if !strings.Contains(out, "file://") {
			t.Errorf("expected a file URI, got %q", out)
		}

		if _, err := run(t, store, "", "playlists", "thumbnail", "1", "https://example.com/a.png"); !errors.Is(err, tasks.ErrInvalid) {
			t.Errorf("expected a remote thumbnail to be invalid, got %v", err)
		}
		if _, err := run(t, store, "", "playlists", "thumbnail", "1"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected a missing path to be rejected, got %v", err)
		}

		mustRun(t, store, "playlists", "thumbnail", "--clear", "1")
		thumb, err := store.GetPlaylistAttr(context.Background(), 1, models.AttrThumbnail)
		if err != nil || thumb != "" {
			t.Errorf("expected the thumbnail to be cleared, got %q (%v)", thumb, err)
		}
	})

	t.Run("members", func(t *testing.T) {
		store := repositories.NewMemoryStore()
		seedCatalog(t, store)

		out := mustRun(t, store, "members", "add", "1", "1", "2", "3")
		if !strings.Contains(out, "added 3 members") {
			t.Errorf("unexpected output: %q", out)
		}
		ids := memberIDs(t, store, 1)
		if len(ids) != 3 {
			t.Fatalf("expected 3 members, got %v", ids)
		}

		out = mustRun(t, store, "members", "move", "--by=-2", "1", ids[2])
		want := fmt.Sprintf("order: %s %s %s", ids[2], ids[0], ids[1])
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}

		mustRun(t, store, "members", "order", "1", ids[0], ids[1], ids[2])
		if got := memberIDs(t, store, 1); strings.Join(got, " ") != strings.Join(ids, " ") {
			t.Errorf("expected the original order back, got %v", got)
		}

		if _, err := run(t, store, "", "members", "order", "1", ids[0], ids[1]); !errors.Is(err, tasks.ErrInvalid) {
			t.Errorf("expected a short order to be invalid, got %v", err)
		}

		out = mustRun(t, store, "members", "list", "--format", "csv", "1")
		for _, title := range []string{"alpha", "beta", "gamma"} {
			if !strings.Contains(out, title) {
				t.Errorf("expected %s in listing %q", title, out)
			}
		}

		if out := mustRun(t, store, "members", "check", "1"); !strings.Contains(out, "3 members in dense order") {
			t.Errorf("unexpected check output: %q", out)
		}

		mustRun(t, store, "members", "remove", "1", ids[0], ids[1])
		if got := memberIDs(t, store, 1); len(got) != 1 || got[0] != ids[2] {
			t.Errorf("expected only %s to remain, got %v", ids[2], got)
		}
	})

	t.Run("members list to file", func(t *testing.T) {
		store := repositories.NewMemoryStore()
		seedCatalog(t, store)
		mustRun(t, store, "members", "add", "1", "2")

		path := filepath.Join(t.TempDir(), "trip.md")
		mustRun(t, store, "members", "list", "--format", "md", "--output", path, "1")

		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "beta") {
			t.Errorf("expected beta in markdown export, got %q", content)
		}
	})

	t.Run("add batch stops at the first failure", func(t *testing.T) {
		store := repositories.NewMemoryStore()
		seedCatalog(t, store)

		_, err := run(t, store, "", "members", "add", "1", "1", "99", "2")
		if !errors.Is(err, tasks.ErrMissing) {
			t.Fatalf("expected a missing content error, got %v", err)
		}
		if !strings.Contains(err.Error(), "item 2 of 3") {
			t.Errorf("expected the failing item in %q", err)
		}
		if got := memberIDs(t, store, 1); len(got) != 1 {
			t.Errorf("expected the first item to stay applied, got %v", got)
		}
	})

	t.Run("content", func(t *testing.T) {
		store := repositories.NewMemoryStore()
		seedCatalog(t, store)

		if _, err := run(t, store, "", "content", "add", "--title", "x", "--path", "/x", "--kind", "hologram"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected an unknown kind to be rejected, got %v", err)
		}

		mustRun(t, store, "members", "add", "1", "1", "3")
		out := mustRun(t, store, "content", "rate", "--playlist", "1", "1=5", "3=2")
		if !strings.Contains(out, "rated 2") {
			t.Errorf("unexpected output: %q", out)
		}
		item, err := store.GetContent(context.Background(), 1)
		if err != nil || item.Rating != 5 {
			t.Errorf("expected rating 5, got %+v (%v)", item, err)
		}

		if _, err := run(t, store, "", "content", "rate", "--playlist", "1", "1=1", "2=4"); !errors.Is(err, tasks.ErrInvalid) {
			t.Errorf("expected content outside the playlist to be rejected, got %v", err)
		}
		if item, _ := store.GetContent(context.Background(), 1); item.Rating != 5 {
			t.Errorf("expected no update to be applied, got rating %d", item.Rating)
		}

		out = mustRun(t, store, "content", "list", "--kind", "audio")
		if strings.Count(out, "\n") != 3 {
			t.Errorf("expected 3 audio items, got %q", out)
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	dir := t.TempDir()
	configPath := tu.MustWriteFile(t, dir, "config.toml", fmt.Sprintf("[database]\npath = %q\n", filepath.Join(dir, "plx.db")))

	out, err := run(t, nil, configPath, "setup", "database")
	if err != nil {
		t.Fatalf("setup database: %v", err)
	}
	if !strings.Contains(out, "database ready") {
		t.Errorf("unexpected output: %q", out)
	}
	tu.AssertFileExists(t, filepath.Join(dir, "plx.db"))

	if _, err := run(t, nil, configPath, "playlists", "create", "Stored"); err != nil {
		t.Fatalf("create on sqlite: %v", err)
	}
	out, err = run(t, nil, configPath, "playlists", "list")
	if err != nil || !strings.Contains(out, "Stored") {
		t.Errorf("expected the playlist to persist, got %q (%v)", out, err)
	}
}
