package models

import (
	"fmt"
	"strings"
)

// Kind tags a content item with its media type.
//
// The set is closed; callers switch on it rather than inspecting concrete types.
type Kind int

const (
	KindOther Kind = iota
	KindAudio
	KindVideo
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	case KindImage:
		return "image"
	default:
		return "other"
	}
}

// ParseKind converts a stored or user supplied kind name into a [Kind].
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audio":
		return KindAudio, nil
	case "video":
		return KindVideo, nil
	case "image":
		return KindImage, nil
	case "other", "":
		return KindOther, nil
	default:
		return KindOther, fmt.Errorf("unknown content kind %q", s)
	}
}

// ContentItem is an item in the content catalog that playlist members point at.
type ContentItem struct {
	ID     ContentID `json:"id"`
	Kind   Kind      `json:"kind"`
	Title  string    `json:"title"`
	Path   string    `json:"path"`
	Rating int       `json:"rating"`
}

// Validate checks the scalar fields of a content item.
func (c *ContentItem) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("path is required")
	}
	if c.Rating < 0 || c.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5, got %d", c.Rating)
	}
	return nil
}

// ContentUpdate is a scalar update applied to one content item.
//
// Nil fields are left unchanged.
type ContentUpdate struct {
	ID     ContentID `json:"id"`
	Title  *string   `json:"title,omitempty"`
	Rating *int      `json:"rating,omitempty"`
}

// Apply writes the non-nil fields of u onto item.
func (u ContentUpdate) Apply(item *ContentItem) {
	if u.Title != nil {
		item.Title = *u.Title
	}
	if u.Rating != nil {
		item.Rating = *u.Rating
	}
}
