package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	th "github.com/desertthunder/plx/internal/testing"
)

func sampleListing() *Listing {
	first := &models.PlaylistItem{PlaylistID: 3, MemberID: 11, ContentID: 101, Order: 0}
	first.SetContent(&models.ContentItem{ID: 101, Kind: models.KindAudio, Title: "Song One", Path: "/music/one.flac", Rating: 3})

	second := &models.PlaylistItem{PlaylistID: 3, MemberID: 12, ContentID: 102, Order: 1}
	second.SetContent(&models.ContentItem{ID: 102, Kind: models.KindVideo, Title: "Clip, Two", Path: "/video/two.mp4"})

	return &Listing{
		Playlist: models.PlaylistSummary{ID: 3, Name: "Test Playlist", Thumbnail: "file:///covers/test.png", NumberOfItems: 2},
		Items:    []*models.PlaylistItem{first, second},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleListing())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Order,MemberID,ContentID,Kind,Title,Path,Rating") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "0,11,101,audio,Song One,/music/one.flac,3") {
			t.Errorf("CSV missing first member, got: %s", output)
		}
		if !strings.Contains(output, `"Clip, Two"`) {
			t.Errorf("CSV should quote titles containing commas, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleListing())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded struct {
			Playlist struct {
				Name string `json:"name"`
			} `json:"playlist"`
			Members []struct {
				MemberID int64  `json:"member_id"`
				Kind     string `json:"kind"`
			} `json:"members"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if decoded.Playlist.Name != "Test Playlist" {
			t.Errorf("expected playlist name, got %q", decoded.Playlist.Name)
		}
		if len(decoded.Members) != 2 || decoded.Members[1].Kind != "video" {
			t.Errorf("unexpected members: %+v", decoded.Members)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleListing())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"![Thumbnail](file:///covers/test.png)",
			"**Members**: 2",
			"1. Song One `audio` (member 11) ★★★",
			"2. Clip, Two `video` (member 12)\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without thumbnail", func(t *testing.T) {
		l := sampleListing()
		l.Playlist.Thumbnail = ""

		data, _ := ExportToMarkdown(l)
		if strings.Contains(string(data), "![Thumbnail]") {
			t.Error("Markdown should omit an empty thumbnail")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleListing())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Test Playlist (ID: 3)") {
			t.Errorf("text missing header, got: %s", output)
		}
		if !strings.Contains(output, "2. [12] Clip, Two") {
			t.Errorf("text missing second member, got: %s", output)
		}
	})

	t.Run("unresolved content", func(t *testing.T) {
		l := &Listing{
			Playlist: models.PlaylistSummary{ID: 1, Name: "bare"},
			Items:    []*models.PlaylistItem{{PlaylistID: 1, MemberID: 5, ContentID: 50}},
		}

		data, err := ExportToMarkdown(l)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "1. content 50") {
			t.Errorf("expected content id fallback, got: %s", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "json", want: JSON},
		{input: "CSV", want: CSV},
		{input: "text", want: Text},
		{input: "", want: Text},
		{input: "md", want: Markdown},
		{input: "markdown", want: Markdown},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	t.Run("writes rendered output", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, sampleListing(), CSV); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Order,") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})

	t.Run("writer failure", func(t *testing.T) {
		if err := Write(&th.FWriter{}, sampleListing(), Text); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, sampleListing(), Format("xml")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.md")

		got, err := WriteExport(sampleListing(), Markdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, got)
		if content := th.MustReadFile(t, got); !strings.HasPrefix(content, "# Test Playlist") {
			t.Errorf("unexpected file content: %s", content)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope", "out.csv")
		if _, err := WriteExport(sampleListing(), CSV, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
