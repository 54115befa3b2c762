package repositories

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

type memoryPlaylist struct {
	name      string
	thumbnail string
	members   []*models.PlaylistItem // sorted lazily by ListMembers
}

// MemoryStore is an in-process [models.Store] used by tests and the --memory flag.
//
// Each call holds the store mutex for its whole duration, which mirrors the single-call
// consistency of the SQLite store.
type MemoryStore struct {
	mu         sync.Mutex
	playlists  map[models.PlaylistID]*memoryPlaylist
	content    map[models.ContentID]models.ContentItem
	nextList   models.PlaylistID
	nextMember models.MemberID
	nextItem   models.ContentID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		playlists: make(map[models.PlaylistID]*memoryPlaylist),
		content:   make(map[models.ContentID]models.ContentItem),
	}
}

func (s *MemoryStore) ListPlaylists(ctx context.Context) ([]models.PlaylistID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]models.PlaylistID, 0, len(s.playlists))
	for id := range s.playlists {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) CreatePlaylist(ctx context.Context, name string) (models.PlaylistID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: playlist name is empty", shared.ErrInvalidValues)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(name, 0) {
		return 0, fmt.Errorf("%w: %q", shared.ErrNameInUse, name)
	}

	s.nextList++
	s.playlists[s.nextList] = &memoryPlaylist{name: name}
	return s.nextList, nil
}

func (s *MemoryStore) DeletePlaylist(ctx context.Context, id models.PlaylistID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.playlists, id)
	return nil
}

func (s *MemoryStore) GetPlaylistAttr(ctx context.Context, id models.PlaylistID, attr models.PlaylistAttr) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[id]
	if !ok {
		return "", playlistNotFound(id)
	}

	switch attr {
	case models.AttrName:
		return p.name, nil
	case models.AttrThumbnail:
		return p.thumbnail, nil
	default:
		return "", fmt.Errorf("%w: unknown playlist attribute %d", shared.ErrInvalidValues, attr)
	}
}

func (s *MemoryStore) SetPlaylistAttr(ctx context.Context, id models.PlaylistID, attr models.PlaylistAttr, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[id]
	if !ok {
		return playlistNotFound(id)
	}

	switch attr {
	case models.AttrName:
		if s.nameTaken(value, id) {
			return fmt.Errorf("%w: %q", shared.ErrNameInUse, value)
		}
		p.name = value
	case models.AttrThumbnail:
		p.thumbnail = value
	default:
		return fmt.Errorf("%w: unknown playlist attribute %d", shared.ErrInvalidValues, attr)
	}
	return nil
}

func (s *MemoryStore) ListMembers(ctx context.Context, playlist models.PlaylistID) ([]models.MemberID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[playlist]
	if !ok {
		return nil, playlistNotFound(playlist)
	}

	s.sortMembers(p)
	ids := make([]models.MemberID, 0, len(p.members))
	for _, m := range p.members {
		ids = append(ids, m.MemberID)
	}
	return ids, nil
}

func (s *MemoryStore) GetMember(ctx context.Context, playlist models.PlaylistID, member models.MemberID) (*models.PlaylistItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, _ := s.findMember(playlist, member)
	if m == nil {
		return nil, memberNotFound(playlist, member)
	}
	item := *m
	return &item, nil
}

func (s *MemoryStore) CountMembers(ctx context.Context, playlist models.PlaylistID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.playlists[playlist]; ok {
		return len(p.members), nil
	}
	return 0, nil
}

func (s *MemoryStore) AddMember(ctx context.Context, playlist models.PlaylistID, content models.ContentID) (models.MemberID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[playlist]
	if !ok {
		return 0, playlistNotFound(playlist)
	}
	if _, ok := s.content[content]; !ok {
		return 0, contentNotFound(content)
	}

	s.nextMember++
	p.members = append(p.members, &models.PlaylistItem{
		PlaylistID: playlist,
		MemberID:   s.nextMember,
		ContentID:  content,
		Order:      len(p.members),
	})
	return s.nextMember, nil
}

func (s *MemoryStore) RemoveMember(ctx context.Context, playlist models.PlaylistID, member models.MemberID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, p := s.findMember(playlist, member)
	if m == nil {
		return nil
	}

	removed := m.Order
	p.members = slices.DeleteFunc(p.members, func(i *models.PlaylistItem) bool { return i.MemberID == member })
	for _, other := range p.members {
		if other.Order > removed {
			other.Order--
		}
	}
	return nil
}

func (s *MemoryStore) SetMemberOrder(ctx context.Context, playlist models.PlaylistID, member models.MemberID, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if index < 0 {
		return fmt.Errorf("%w: negative order index %d", shared.ErrInvalidValues, index)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, _ := s.findMember(playlist, member)
	if m == nil {
		return memberNotFound(playlist, member)
	}
	m.Order = index
	return nil
}

func (s *MemoryStore) CreateContent(ctx context.Context, item *models.ContentItem) (models.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidValues, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextItem++
	item.ID = s.nextItem
	s.content[item.ID] = *item
	return item.ID, nil
}

func (s *MemoryStore) GetContent(ctx context.Context, id models.ContentID) (*models.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.content[id]
	if !ok {
		return nil, contentNotFound(id)
	}
	return &item, nil
}

func (s *MemoryStore) UpdateContent(ctx context.Context, item *models.ContentItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidValues, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.content[item.ID]; !ok {
		return contentNotFound(item.ID)
	}
	s.content[item.ID] = *item
	return nil
}

func (s *MemoryStore) ListContent(ctx context.Context, kind *models.Kind) ([]*models.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*models.ContentItem
	for _, item := range s.content {
		if kind != nil && item.Kind != *kind {
			continue
		}
		c := item
		items = append(items, &c)
	}
	slices.SortFunc(items, func(a, b *models.ContentItem) int { return int(a.ID - b.ID) })
	return items, nil
}

// nameTaken reports whether another playlist than self already uses name. Caller holds mu.
func (s *MemoryStore) nameTaken(name string, self models.PlaylistID) bool {
	for id, p := range s.playlists {
		if id != self && p.name == name {
			return true
		}
	}
	return false
}

// findMember locates a member and its playlist. Caller holds mu.
func (s *MemoryStore) findMember(playlist models.PlaylistID, member models.MemberID) (*models.PlaylistItem, *memoryPlaylist) {
	p, ok := s.playlists[playlist]
	if !ok {
		return nil, nil
	}
	for _, m := range p.members {
		if m.MemberID == member {
			return m, p
		}
	}
	return nil, p
}

// sortMembers restores order-index order after SetMemberOrder writes. Caller holds mu.
func (s *MemoryStore) sortMembers(p *memoryPlaylist) {
	slices.SortStableFunc(p.members, func(a, b *models.PlaylistItem) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return int(a.MemberID - b.MemberID)
	})
}
