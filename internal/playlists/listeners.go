package playlists

import (
	"slices"
	"sync"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/tasks"
)

// ChangeKind identifies what a [ChangeEvent] describes.
type ChangeKind int

const (
	PlaylistCreated ChangeKind = iota
	PlaylistRemoved
	MembersAdded
	MembersRemoved
	OrderChanged
	AttrChanged
	ContentUpdated
)

func (k ChangeKind) String() string {
	switch k {
	case PlaylistCreated:
		return "playlist_created"
	case PlaylistRemoved:
		return "playlist_removed"
	case MembersAdded:
		return "members_added"
	case MembersRemoved:
		return "members_removed"
	case OrderChanged:
		return "order_changed"
	case AttrChanged:
		return "attr_changed"
	case ContentUpdated:
		return "content_updated"
	default:
		return ""
	}
}

// ChangeEvent is published after a mutating operation is delivered successfully.
type ChangeEvent struct {
	Kind     ChangeKind
	Playlist models.PlaylistID
	Members  []models.MemberID  // affected members, or the new order for OrderChanged
	Attr     models.PlaylistAttr // set for AttrChanged
}

// ListenerHandle identifies one registration made with [Manager.AddChangeListener].
type ListenerHandle uint64

type listener struct {
	scope *tasks.Scope
	fn    func(ChangeEvent)
}

type registry struct {
	mu      sync.Mutex
	next    ListenerHandle
	entries map[ListenerHandle]listener
}

func newRegistry() *registry {
	return &registry{entries: make(map[ListenerHandle]listener)}
}

// AddChangeListener registers fn for change events. It runs on the loop goroutine, only while
// scope is open; listeners whose scope has closed are dropped on the next event.
func (m *Manager) AddChangeListener(scope *tasks.Scope, fn func(ChangeEvent)) ListenerHandle {
	r := m.listeners
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.entries[r.next] = listener{scope: scope, fn: fn}
	return r.next
}

// RemoveChangeListener drops a registration and reports whether it was present.
func (m *Manager) RemoveChangeListener(h ListenerHandle) bool {
	r := m.listeners
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[h]; !ok {
		return false
	}
	delete(r.entries, h)
	return true
}

// Listeners returns the number of registered listeners.
func (m *Manager) Listeners() int {
	m.listeners.mu.Lock()
	defer m.listeners.mu.Unlock()
	return len(m.listeners.entries)
}

// publish calls live listeners in registration order. Listeners may add or remove
// registrations while it runs.
func (r *registry) publish(ev ChangeEvent) {
	r.mu.Lock()
	handles := make([]ListenerHandle, 0, len(r.entries))
	for h, l := range r.entries {
		if l.scope.Closed() {
			delete(r.entries, h)
			continue
		}
		handles = append(handles, h)
	}
	slices.Sort(handles)

	fns := make([]func(ChangeEvent), 0, len(handles))
	for _, h := range handles {
		fns = append(fns, r.entries[h].fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
