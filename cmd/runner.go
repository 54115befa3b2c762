package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/metrics"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/playlists"
	"github.com/desertthunder/plx/internal/repositories"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store, bridge and manager are opened on first use so that commands which never touch
// playlists do not open the database.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	metrics  *metrics.Collector
	store    models.Store
	db       *sql.DB
	bridge   *tasks.Bridge
	manager  *playlists.Manager
	progress chan tasks.ProgressUpdate
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Store   models.Store // opened from the config when nil
	Logger  *log.Logger
	Output  io.Writer
	Metrics *metrics.Collector
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCollector()
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		metrics:  opts.Metrics,
		store:    opts.Store,
		progress: make(chan tasks.ProgressUpdate, 256),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, playlistsCommand, membersCommand, contentCommand, tuiCommand, metricsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger. It only affects the bridge if called before [Runner.open].
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Configure loads the config file named by --config and applies the log level.
//
// A missing file keeps the defaults; an unreadable one is reported and also keeps them.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		} else {
			r.config = config
		}
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

// open creates the store, task bridge and manager on first use.
func (r *Runner) open(cmd *cli.Command) error {
	if r.manager != nil {
		return nil
	}

	if r.store == nil {
		switch {
		case cmd.Bool("memory"):
			r.logger.Debug("using in-memory store")
			r.store = repositories.NewMemoryStore()
		default:
			db, err := r.openDatabase()
			if err != nil {
				return err
			}
			r.db = db
			r.store = repositories.NewStore(db)
		}
	}

	r.bridge = tasks.New(
		tasks.WithLogger(shared.WithLogger(r.logger, "component", "tasks")),
		tasks.WithRecorder(r.metrics),
		tasks.WithMaxInFlight(r.config.Tasks.MaxInFlight),
	)
	r.manager = playlists.NewManager(r.store, r.bridge.Runner,
		playlists.WithLogger(shared.WithLogger(r.logger, "component", "playlists")),
		playlists.WithBatchRateLimit(r.config.Tasks.BatchRateLimit),
		playlists.WithProgress(r.progress),
	)
	return nil
}

func (r *Runner) openDatabase() (*sql.DB, error) {
	path := r.config.Database.Path
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if !strings.HasPrefix(path, ":memory:") {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Close stops accepting work and closes the database.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.bridge != nil {
		r.bridge.Runner.Close()
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// await drives the loop until every submitted task, including ones submitted by callbacks,
// has been delivered, then logs any batch progress reported along the way.
func (r *Runner) await(ctx context.Context) error {
	err := r.bridge.Loop.RunUntilIdle(ctx)
	for {
		select {
		case update := <-r.progress:
			r.logger.Info(update.Message, "phase", update.Phase)
		default:
			return err
		}
	}
}

// call submits one operation with a fresh scope, waits for it and returns its outcome.
func call[T any](ctx context.Context, r *Runner, submit func(*tasks.Scope, playlists.Callbacks[T]) error) (T, error) {
	var (
		out     T
		failure error
	)

	scope := tasks.NewScope("cli")
	defer scope.Close()

	err := submit(scope, playlists.Callbacks[T]{
		OnSuccess: func(v T) { out = v },
		OnError:   func(e *tasks.Error) { failure = e },
	})
	if err != nil {
		return out, err
	}
	if err := r.await(ctx); err != nil {
		return out, err
	}
	return out, failure
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func parsePlaylistID(s string) (models.PlaylistID, error) {
	n, err := parseID("playlist", s)
	return models.PlaylistID(n), err
}

func parseMemberID(s string) (models.MemberID, error) {
	n, err := parseID("member", s)
	return models.MemberID(n), err
}

func parseContentID(s string) (models.ContentID, error) {
	n, err := parseID("content", s)
	return models.ContentID(n), err
}

func parseID(what, s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %s id is required", shared.ErrMissingArgument, what)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: invalid %s id %q", shared.ErrInvalidArgument, what, s)
	}
	return n, nil
}
