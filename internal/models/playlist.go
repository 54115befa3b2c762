package models

import (
	"context"
	"encoding/json"
	"sync"
)

// Playlist is a lightweight handle over a stored playlist.
//
// Only the id is fixed. Name and thumbnail are fetched from the store on first
// access and cached until [Playlist.Refresh]; the member count is never cached.
type Playlist struct {
	id    PlaylistID
	store ContentStore

	mu        sync.Mutex
	name      *string
	thumbnail *string
}

// NewPlaylist wraps id in a handle backed by store.
func NewPlaylist(id PlaylistID, store ContentStore) *Playlist {
	return &Playlist{id: id, store: store}
}

// ID returns the immutable playlist id.
func (p *Playlist) ID() PlaylistID { return p.id }

// Name returns the playlist name, reading it from the store if it is not cached.
func (p *Playlist) Name(ctx context.Context) (string, error) {
	return p.attr(ctx, AttrName, &p.name)
}

// Thumbnail returns the thumbnail reference, empty when unset.
func (p *Playlist) Thumbnail(ctx context.Context) (string, error) {
	return p.attr(ctx, AttrThumbnail, &p.thumbnail)
}

// NumberOfItems counts the playlist members in the store.
func (p *Playlist) NumberOfItems(ctx context.Context) (int, error) {
	return p.store.CountMembers(ctx, p.id)
}

// Cache records attribute values already known to the caller, e.g. right after a successful write.
func (p *Playlist) Cache(attr PlaylistAttr, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch attr {
	case AttrName:
		p.name = &value
	case AttrThumbnail:
		p.thumbnail = &value
	}
}

// Refresh drops all cached attributes.
func (p *Playlist) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = nil
	p.thumbnail = nil
}

func (p *Playlist) attr(ctx context.Context, attr PlaylistAttr, slot **string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if *slot != nil {
		return **slot, nil
	}

	v, err := p.store.GetPlaylistAttr(ctx, p.id, attr)
	if err != nil {
		return "", err
	}
	*slot = &v
	return v, nil
}

// PlaylistSummary is a detached snapshot of a playlist, safe to hand across goroutines.
type PlaylistSummary struct {
	ID            PlaylistID `json:"id"`
	Name          string     `json:"name"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	NumberOfItems int        `json:"number_of_items"`
}

// Summarize loads every attribute of the playlist into a [PlaylistSummary].
func (p *Playlist) Summarize(ctx context.Context) (*PlaylistSummary, error) {
	name, err := p.Name(ctx)
	if err != nil {
		return nil, err
	}
	thumb, err := p.Thumbnail(ctx)
	if err != nil {
		return nil, err
	}
	count, err := p.NumberOfItems(ctx)
	if err != nil {
		return nil, err
	}
	return &PlaylistSummary{ID: p.id, Name: name, Thumbnail: thumb, NumberOfItems: count}, nil
}

// MarshalJSON renders only the cached state; it never touches the store.
func (p *Playlist) MarshalJSON() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := struct {
		ID        PlaylistID `json:"id"`
		Name      *string    `json:"name,omitempty"`
		Thumbnail *string    `json:"thumbnail,omitempty"`
	}{p.id, p.name, p.thumbnail}
	return json.Marshal(out)
}
