package playlists

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/ordering"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"golang.org/x/time/rate"
)

// Callbacks receive the outcome of one operation. Exactly one of them runs, or neither when
// the scope was closed before delivery. Nil callbacks are skipped.
type Callbacks[T any] struct {
	OnSuccess func(T)
	OnError   func(*tasks.Error)
}

// Manager submits playlist operations to background workers.
type Manager struct {
	store     models.Store
	runner    *tasks.Runner
	logger    *log.Logger
	limiter   *rate.Limiter
	progress  chan<- tasks.ProgressUpdate
	listeners *registry
}

// Option configures a [Manager].
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithBatchRateLimit paces batch items to perSecond. Zero or less disables pacing.
func WithBatchRateLimit(perSecond float64) Option {
	return func(m *Manager) {
		if perSecond > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithProgress sets the channel batch operations report on. Sends never block.
func WithProgress(ch chan<- tasks.ProgressUpdate) Option {
	return func(m *Manager) { m.progress = ch }
}

// NewManager creates a manager over store whose work runs on runner.
func NewManager(store models.Store, runner *tasks.Runner, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		runner:    runner,
		logger:    log.New(io.Discard),
		listeners: newRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// submit builds a task for op and starts work. When the work succeeds and change is non-nil,
// the resulting event is published to listeners after the success callback.
func submit[T any](m *Manager, op string, scope *tasks.Scope, cb Callbacks[T], change func(T) *ChangeEvent, work func(ctx context.Context) (T, error)) error {
	onSuccess := func(payload any) {
		v, _ := payload.(T)
		if cb.OnSuccess != nil {
			cb.OnSuccess(v)
		}
		if change != nil {
			if ev := change(v); ev != nil {
				m.listeners.publish(*ev)
			}
		}
	}

	task := tasks.NewTask(op, scope, onSuccess, cb.OnError)
	err := m.runner.Run(task, func(ctx context.Context, t *tasks.Task) {
		v, err := work(ctx)
		if err != nil {
			t.Fail(err)
			return
		}
		t.Succeed(v)
	})
	if err != nil {
		m.logger.Error("failed to submit", "op", op, "error", err)
		return err
	}

	m.logger.Debug("submitted", "op", op, "task", task.ID, "scope", scope.Name())
	return nil
}

// GetPlaylists lists every playlist with its name and thumbnail already cached.
func (m *Manager) GetPlaylists(scope *tasks.Scope, cb Callbacks[[]*models.Playlist]) error {
	return submit(m, "get_playlists", scope, cb, nil, func(ctx context.Context) ([]*models.Playlist, error) {
		ids, err := m.store.ListPlaylists(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]*models.Playlist, 0, len(ids))
		for _, id := range ids {
			p := models.NewPlaylist(id, m.store)
			if _, err := p.Name(ctx); err != nil {
				return nil, err
			}
			if _, err := p.Thumbnail(ctx); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	})
}

// CreatePlaylist creates an empty playlist named name.
func (m *Manager) CreatePlaylist(scope *tasks.Scope, name string, cb Callbacks[*models.Playlist]) error {
	name = shared.NormalizeName(name)
	if name == "" {
		return tasks.Invalid("playlist name is empty")
	}

	return submit(m, "create_playlist", scope, cb,
		func(p *models.Playlist) *ChangeEvent {
			return &ChangeEvent{Kind: PlaylistCreated, Playlist: p.ID()}
		},
		func(ctx context.Context) (*models.Playlist, error) {
			id, err := m.store.CreatePlaylist(ctx, name)
			if err != nil {
				return nil, err
			}
			p := models.NewPlaylist(id, m.store)
			p.Cache(models.AttrName, name)
			p.Cache(models.AttrThumbnail, "")
			return p, nil
		},
	)
}

// RemovePlaylist deletes a playlist. Removing a playlist that does not exist succeeds.
func (m *Manager) RemovePlaylist(scope *tasks.Scope, id models.PlaylistID, cb Callbacks[models.PlaylistID]) error {
	return submit(m, "remove_playlist", scope, cb,
		func(id models.PlaylistID) *ChangeEvent { return &ChangeEvent{Kind: PlaylistRemoved, Playlist: id} },
		func(ctx context.Context) (models.PlaylistID, error) {
			return id, m.store.DeletePlaylist(ctx, id)
		},
	)
}

// Add appends content to the end of playlist.
func (m *Manager) Add(scope *tasks.Scope, playlist models.PlaylistID, content models.ContentID, cb Callbacks[models.MemberID]) error {
	return submit(m, "add", scope, cb,
		func(id models.MemberID) *ChangeEvent {
			return &ChangeEvent{Kind: MembersAdded, Playlist: playlist, Members: []models.MemberID{id}}
		},
		func(ctx context.Context) (models.MemberID, error) {
			return m.store.AddMember(ctx, playlist, content)
		},
	)
}

// Remove deletes one member. Removing a member that no longer exists succeeds.
func (m *Manager) Remove(scope *tasks.Scope, ref models.MemberRef, cb Callbacks[models.MemberRef]) error {
	return submit(m, "remove", scope, cb,
		func(ref models.MemberRef) *ChangeEvent {
			return &ChangeEvent{Kind: MembersRemoved, Playlist: ref.PlaylistID, Members: []models.MemberID{ref.MemberID}}
		},
		func(ctx context.Context) (models.MemberRef, error) {
			return ref, m.store.RemoveMember(ctx, ref.PlaylistID, ref.MemberID)
		},
	)
}

// Members lists the members of playlist in order, with their content items resolved.
func (m *Manager) Members(scope *tasks.Scope, playlist models.PlaylistID, cb Callbacks[[]*models.PlaylistItem]) error {
	return submit(m, "members", scope, cb, nil, func(ctx context.Context) ([]*models.PlaylistItem, error) {
		return m.loadMembers(ctx, playlist)
	})
}

func (m *Manager) loadMembers(ctx context.Context, playlist models.PlaylistID) ([]*models.PlaylistItem, error) {
	ids, err := m.store.ListMembers(ctx, playlist)
	if err != nil {
		return nil, err
	}

	lookup := func(id models.ContentID) (*models.ContentItem, error) { return m.store.GetContent(ctx, id) }
	items := make([]*models.PlaylistItem, 0, len(ids))
	for _, id := range ids {
		item, err := m.store.GetMember(ctx, playlist, id)
		if err != nil {
			return nil, err
		}
		if _, err := item.Content(lookup); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Move shifts member by delta positions, clamped to the ends of the playlist, and rewrites
// every order index. The new order is the payload.
func (m *Manager) Move(scope *tasks.Scope, playlist models.PlaylistID, member models.MemberID, delta int, cb Callbacks[[]models.MemberID]) error {
	return submit(m, "move", scope, cb, reordered(playlist), func(ctx context.Context) ([]models.MemberID, error) {
		current, err := m.store.ListMembers(ctx, playlist)
		if err != nil {
			return nil, err
		}

		next, err := ordering.Move(current, member, delta)
		if err != nil {
			return nil, err
		}
		return next, ordering.Persist(ctx, m.store, playlist, next)
	})
}

// SetOrder replaces the order of playlist with proposed, which must name every member exactly once.
func (m *Manager) SetOrder(scope *tasks.Scope, playlist models.PlaylistID, proposed []models.MemberRef, cb Callbacks[[]models.MemberID]) error {
	if len(proposed) == 0 {
		return tasks.Invalid("proposed order is empty")
	}
	proposed = append([]models.MemberRef(nil), proposed...)

	return submit(m, "set_order", scope, cb, reordered(playlist), func(ctx context.Context) ([]models.MemberID, error) {
		current, err := m.store.ListMembers(ctx, playlist)
		if err != nil {
			return nil, err
		}

		next, err := ordering.SetOrder(playlist, current, proposed)
		if err != nil {
			return nil, err
		}
		return next, ordering.Persist(ctx, m.store, playlist, next)
	})
}

func reordered(playlist models.PlaylistID) func([]models.MemberID) *ChangeEvent {
	return func(order []models.MemberID) *ChangeEvent {
		return &ChangeEvent{Kind: OrderChanged, Playlist: playlist, Members: order}
	}
}

// SetName renames playlist. The normalized name is the payload.
func (m *Manager) SetName(scope *tasks.Scope, playlist models.PlaylistID, name string, cb Callbacks[string]) error {
	name = shared.NormalizeName(name)
	if name == "" {
		return tasks.Invalid("playlist name is empty")
	}

	return submit(m, "set_name", scope, cb,
		func(string) *ChangeEvent { return &ChangeEvent{Kind: AttrChanged, Playlist: playlist, Attr: models.AttrName} },
		func(ctx context.Context) (string, error) {
			return name, m.store.SetPlaylistAttr(ctx, playlist, models.AttrName, name)
		},
	)
}

// SetThumbnail sets or, with an empty reference, clears the playlist thumbnail.
//
// A reference is a plain path or a file URI and must name an existing regular file when the
// worker runs. The stored value is the absolute file URI, which is also the payload.
func (m *Manager) SetThumbnail(scope *tasks.Scope, playlist models.PlaylistID, ref string, cb Callbacks[string]) error {
	path, err := parseThumbnail(ref)
	if err != nil {
		return err
	}

	return submit(m, "set_thumbnail", scope, cb,
		func(string) *ChangeEvent {
			return &ChangeEvent{Kind: AttrChanged, Playlist: playlist, Attr: models.AttrThumbnail}
		},
		func(ctx context.Context) (string, error) {
			value, err := resolveThumbnail(path)
			if err != nil {
				return "", err
			}
			return value, m.store.SetPlaylistAttr(ctx, playlist, models.AttrThumbnail, value)
		},
	)
}

// Count returns the number of members in playlist.
func (m *Manager) Count(scope *tasks.Scope, playlist models.PlaylistID, cb Callbacks[int]) error {
	return submit(m, "count", scope, cb, nil, func(ctx context.Context) (int, error) {
		return models.NewPlaylist(playlist, m.store).NumberOfItems(ctx)
	})
}

// Summary loads the name, thumbnail and member count of playlist.
func (m *Manager) Summary(scope *tasks.Scope, playlist models.PlaylistID, cb Callbacks[*models.PlaylistSummary]) error {
	return submit(m, "summary", scope, cb, nil, func(ctx context.Context) (*models.PlaylistSummary, error) {
		return models.NewPlaylist(playlist, m.store).Summarize(ctx)
	})
}

// OrderReport is the result of [Manager.CheckOrder].
type OrderReport struct {
	Playlist models.PlaylistID `json:"playlist"`
	Members  int               `json:"members"`
	Problem  string            `json:"problem,omitempty"` // empty when the order is a dense permutation
}

// OK reports whether no problem was found.
func (r OrderReport) OK() bool { return r.Problem == "" }

// CheckOrder audits that the order indices of playlist form a dense permutation.
func (m *Manager) CheckOrder(scope *tasks.Scope, playlist models.PlaylistID, cb Callbacks[OrderReport]) error {
	return submit(m, "check_order", scope, cb, nil, func(ctx context.Context) (OrderReport, error) {
		ids, err := m.store.ListMembers(ctx, playlist)
		if err != nil {
			return OrderReport{}, err
		}

		items := make([]models.PlaylistItem, 0, len(ids))
		for _, id := range ids {
			item, err := m.store.GetMember(ctx, playlist, id)
			if err != nil {
				return OrderReport{}, err
			}
			items = append(items, *item)
		}

		report := OrderReport{Playlist: playlist, Members: len(items)}
		if err := ordering.Validate(items); err != nil {
			report.Problem = err.Error()
		}
		return report, nil
	})
}
