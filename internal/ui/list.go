package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plx/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = memberItem{}
)

// playlistItem wraps [models.PlaylistSummary] to implement [list.Item].
//
// count is -1 until the member count has been delivered.
type playlistItem struct {
	summary models.PlaylistSummary
	count   int
}

func (i playlistItem) FilterValue() string { return i.summary.Name }
func (i playlistItem) Title() string       { return i.summary.Name }
func (i playlistItem) Description() string {
	desc := "… items"
	if i.count >= 0 {
		desc = fmt.Sprintf("%d items", i.count)
	}
	if i.summary.Thumbnail != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.summary.Thumbnail)
	}
	return desc
}

// memberItem wraps [models.PlaylistItem] to implement [list.Item].
type memberItem struct {
	item *models.PlaylistItem
}

func (i memberItem) content() *models.ContentItem { return i.item.Cached() }

func (i memberItem) FilterValue() string { return i.Title() }
func (i memberItem) Title() string {
	if c := i.content(); c != nil {
		return fmt.Sprintf("%d. %s", i.item.Order+1, c.Title)
	}
	return fmt.Sprintf("%d. content #%s", i.item.Order+1, i.item.ContentID)
}
func (i memberItem) Description() string {
	c := i.content()
	if c == nil {
		return fmt.Sprintf("member %s", i.item.MemberID)
	}
	desc := c.Kind.String()
	if c.Rating > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Repeat("★", c.Rating))
	}
	return fmt.Sprintf("%s • %s", desc, c.Path)
}
