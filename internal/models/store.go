package models

import "context"

// ContentStore is the synchronous, blocking interface over the playlist database.
//
// Every call blocks the calling goroutine until the store answers. Implementations keep
// each single call internally consistent; no locking spans multiple calls.
type ContentStore interface {
	ListPlaylists(ctx context.Context) ([]PlaylistID, error)
	CreatePlaylist(ctx context.Context, name string) (PlaylistID, error) // fails with shared.ErrNameInUse
	DeletePlaylist(ctx context.Context, id PlaylistID) error             // deleting a missing playlist succeeds
	GetPlaylistAttr(ctx context.Context, id PlaylistID, attr PlaylistAttr) (string, error)
	SetPlaylistAttr(ctx context.Context, id PlaylistID, attr PlaylistAttr, value string) error

	ListMembers(ctx context.Context, playlist PlaylistID) ([]MemberID, error) // ordered by order index
	GetMember(ctx context.Context, playlist PlaylistID, member MemberID) (*PlaylistItem, error)
	CountMembers(ctx context.Context, playlist PlaylistID) (int, error)
	AddMember(ctx context.Context, playlist PlaylistID, content ContentID) (MemberID, error)
	RemoveMember(ctx context.Context, playlist PlaylistID, member MemberID) error // compacts order indices
	SetMemberOrder(ctx context.Context, playlist PlaylistID, member MemberID, index int) error
}

// ContentCatalog exposes the content items playlist members refer to.
type ContentCatalog interface {
	CreateContent(ctx context.Context, item *ContentItem) (ContentID, error)
	GetContent(ctx context.Context, id ContentID) (*ContentItem, error)
	UpdateContent(ctx context.Context, item *ContentItem) error
	ListContent(ctx context.Context, kind *Kind) ([]*ContentItem, error)
}

// Store combines playlist and catalog access, as provided by both bundled adapters.
type Store interface {
	ContentStore
	ContentCatalog
}
