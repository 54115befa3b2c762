// package formatter renders playlist member listings as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// Format names an output format.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Text     Format = "txt"
	Markdown Format = "markdown"
)

// ParseFormat accepts a format name, including the aliases "text" and "md".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "txt", "text", "":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (json, csv, txt, markdown)", shared.ErrInvalidArgument, name)
	}
}

// Ext returns the file extension used when writing f to disk.
func (f Format) Ext() string {
	if f == Markdown {
		return "md"
	}
	return string(f)
}

// Listing is a playlist with its members in order.
type Listing struct {
	Playlist models.PlaylistSummary
	Items    []*models.PlaylistItem
}

type listingRow struct {
	Order     int              `json:"order"`
	MemberID  models.MemberID  `json:"member_id"`
	ContentID models.ContentID `json:"content_id"`
	Kind      string           `json:"kind,omitempty"`
	Title     string           `json:"title,omitempty"`
	Path      string           `json:"path,omitempty"`
	Rating    int              `json:"rating"`
}

func rows(l *Listing) []listingRow {
	out := make([]listingRow, 0, len(l.Items))
	for _, item := range l.Items {
		row := listingRow{Order: item.Order, MemberID: item.MemberID, ContentID: item.ContentID}
		if c := item.Cached(); c != nil {
			row.Kind = c.Kind.String()
			row.Title = c.Title
			row.Path = c.Path
			row.Rating = c.Rating
		}
		out = append(out, row)
	}
	return out
}

// ExportToJSON renders the playlist summary and its members as indented JSON
func ExportToJSON(l *Listing) ([]byte, error) {
	out := struct {
		Playlist models.PlaylistSummary `json:"playlist"`
		Members  []listingRow           `json:"members"`
	}{l.Playlist, rows(l)}

	data, err := shared.MarshalJSON(out, true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing: %w", err)
	}
	return data, nil
}

// ExportToCSV converts a Listing to CSV format with columns: Order, MemberID, ContentID, Kind, Title, Path, Rating
func ExportToCSV(l *Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Order", "MemberID", "ContentID", "Kind", "Title", "Path", "Rating"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows(l) {
		record := []string{
			strconv.Itoa(row.Order),
			row.MemberID.String(),
			row.ContentID.String(),
			row.Kind,
			row.Title,
			row.Path,
			strconv.Itoa(row.Rating),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Listing to Markdown, showing the thumbnail when one is set
func ExportToMarkdown(l *Listing) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", l.Playlist.Name)

	if l.Playlist.Thumbnail != "" {
		fmt.Fprintf(&buf, "![Thumbnail](%s)\n\n", l.Playlist.Thumbnail)
	}

	fmt.Fprintf(&buf, "**Members**: %d\n\n", len(l.Items))

	buf.WriteString("## Members\n\n")
	for _, row := range rows(l) {
		title := row.Title
		if title == "" {
			title = fmt.Sprintf("content %d", row.ContentID)
		}
		fmt.Fprintf(&buf, "%d. %s `%s` (member %d)%s\n", row.Order+1, title, row.Kind, row.MemberID, stars(row.Rating))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Listing to plain text format
func ExportToText(l *Listing) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s (ID: %d)\n", l.Playlist.Name, l.Playlist.ID)
	if l.Playlist.Thumbnail != "" {
		fmt.Fprintf(&buf, "Thumbnail: %s\n", l.Playlist.Thumbnail)
	}
	fmt.Fprintf(&buf, "Members: %d\n\n", len(l.Items))

	for _, row := range rows(l) {
		fmt.Fprintf(&buf, "%d. [%d] %s\n", row.Order+1, row.MemberID, row.Title)
	}

	return buf.Bytes(), nil
}

func stars(rating int) string {
	if rating <= 0 {
		return ""
	}
	return " " + strings.Repeat("★", rating)
}

// Render produces l in format f.
func Render(l *Listing, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return ExportToJSON(l)
	case CSV:
		return ExportToCSV(l)
	case Markdown:
		return ExportToMarkdown(l)
	case Text:
		return ExportToText(l)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// Write renders l in format f to w.
func Write(w io.Writer, l *Listing, f Format) error {
	data, err := Render(l, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s output: %w", f, err)
	}
	return nil
}

// WriteExport renders l in format f to a file.
//
// Defaults to playlist_{id}.{ext} as the filename.
func WriteExport(l *Listing, f Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("playlist_%d.%s", l.Playlist.ID, f.Ext())
	}

	data, err := Render(l, f)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}
