// package models defines the data model for playlist collections and their members
package models

import (
	"fmt"
	"strconv"
)

// PlaylistID identifies a playlist. Immutable once assigned by the store.
type PlaylistID int64

// MemberID identifies one member slot within a playlist.
//
// It is assigned by the store on add and is distinct from the [ContentID] of the underlying item.
type MemberID int64

// ContentID identifies an item in the content catalog.
type ContentID int64

func (id PlaylistID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id MemberID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id ContentID) String() string  { return strconv.FormatInt(int64(id), 10) }

// MemberRef names a member together with the playlist that owns it.
type MemberRef struct {
	PlaylistID PlaylistID `json:"playlist_id"`
	MemberID   MemberID   `json:"member_id"`
}

func (r MemberRef) String() string {
	return fmt.Sprintf("%d/%d", r.PlaylistID, r.MemberID)
}

// PlaylistAttr enumerates the scalar playlist attributes held by the store.
type PlaylistAttr int

const (
	AttrName PlaylistAttr = iota
	AttrThumbnail
)

func (a PlaylistAttr) String() string {
	switch a {
	case AttrName:
		return "name"
	case AttrThumbnail:
		return "thumbnail"
	default:
		return ""
	}
}

// PlaylistItem is one member of a playlist.
type PlaylistItem struct {
	PlaylistID PlaylistID `json:"playlist_id"`
	MemberID   MemberID   `json:"member_id"`
	ContentID  ContentID  `json:"content_id"`
	Order      int        `json:"order"` // rank within the playlist, dense over [0, N)

	content *ContentItem
}

// Ref returns the (playlist, member) identity of the item.
func (i *PlaylistItem) Ref() MemberRef {
	return MemberRef{PlaylistID: i.PlaylistID, MemberID: i.MemberID}
}

// Content resolves the underlying content item on first use and caches it.
func (i *PlaylistItem) Content(lookup func(ContentID) (*ContentItem, error)) (*ContentItem, error) {
	if i.content != nil {
		return i.content, nil
	}
	item, err := lookup(i.ContentID)
	if err != nil {
		return nil, err
	}
	i.content = item
	return item, nil
}

// Cached returns the content item if it has already been resolved.
func (i *PlaylistItem) Cached() *ContentItem {
	return i.content
}

// SetContent primes the cached content item, e.g. when it was loaded alongside the member.
func (i *PlaylistItem) SetContent(item *ContentItem) {
	i.content = item
}
