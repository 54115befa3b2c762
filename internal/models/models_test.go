package models

import (
	"context"
	"errors"
	"testing"
)

// attrStore counts attribute reads so lazy caching can be observed.
type attrStore struct {
	ContentStore
	attrs   map[PlaylistAttr]string
	reads   int
	count   int
	attrErr error
}

func (s *attrStore) GetPlaylistAttr(ctx context.Context, id PlaylistID, attr PlaylistAttr) (string, error) {
	s.reads++
	if s.attrErr != nil {
		return "", s.attrErr
	}
	return s.attrs[attr], nil
}

func (s *attrStore) CountMembers(ctx context.Context, playlist PlaylistID) (int, error) {
	s.count++
	return 3, nil
}

func TestPlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("Name is fetched lazily and cached", func(t *testing.T) {
		store := &attrStore{attrs: map[PlaylistAttr]string{AttrName: "Mix"}}
		pl := NewPlaylist(7, store)

		if store.reads != 0 {
			t.Fatalf("expected no reads before access, got %d", store.reads)
		}

		for range 3 {
			name, err := pl.Name(ctx)
			if err != nil {
				t.Fatalf("Name() error = %v", err)
			}
			if name != "Mix" {
				t.Errorf("Name() = %q, want Mix", name)
			}
		}

		if store.reads != 1 {
			t.Errorf("expected 1 store read, got %d", store.reads)
		}
	})

	t.Run("Refresh drops the cache", func(t *testing.T) {
		store := &attrStore{attrs: map[PlaylistAttr]string{AttrName: "Mix"}}
		pl := NewPlaylist(7, store)

		_, _ = pl.Name(ctx)
		pl.Refresh()
		store.attrs[AttrName] = "Renamed"

		name, err := pl.Name(ctx)
		if err != nil {
			t.Fatalf("Name() error = %v", err)
		}
		if name != "Renamed" {
			t.Errorf("Name() = %q, want Renamed", name)
		}
	})

	t.Run("Cache primes values without reading", func(t *testing.T) {
		store := &attrStore{attrs: map[PlaylistAttr]string{}}
		pl := NewPlaylist(1, store)
		pl.Cache(AttrThumbnail, "/tmp/cover.png")

		thumb, err := pl.Thumbnail(ctx)
		if err != nil {
			t.Fatalf("Thumbnail() error = %v", err)
		}
		if thumb != "/tmp/cover.png" || store.reads != 0 {
			t.Errorf("Thumbnail() = %q with %d reads", thumb, store.reads)
		}
	})

	t.Run("NumberOfItems is never cached", func(t *testing.T) {
		store := &attrStore{}
		pl := NewPlaylist(1, store)

		_, _ = pl.NumberOfItems(ctx)
		_, _ = pl.NumberOfItems(ctx)

		if store.count != 2 {
			t.Errorf("expected 2 count calls, got %d", store.count)
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		store := &attrStore{attrErr: errors.New("boom")}
		pl := NewPlaylist(1, store)

		if _, err := pl.Name(ctx); err == nil {
			t.Fatal("expected error")
		}
		store.attrErr = nil
		store.attrs = map[PlaylistAttr]string{AttrName: "Back"}

		if name, err := pl.Name(ctx); err != nil || name != "Back" {
			t.Errorf("Name() = %q, %v", name, err)
		}
	})
}

func TestParseKind(t *testing.T) {
	tc := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"audio", KindAudio, false},
		{"VIDEO", KindVideo, false},
		{" image ", KindImage, false},
		{"", KindOther, false},
		{"hologram", KindOther, true},
	}

	for _, tt := range tc {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !tt.wantErr && tt.input != "" {
				if round, _ := ParseKind(got.String()); round != got {
					t.Errorf("kind %v does not round-trip through String()", got)
				}
			}
		})
	}
}

func TestContentItem(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		valid := &ContentItem{Kind: KindAudio, Title: "Song", Path: "/music/song.mp3", Rating: 3}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid item, got %v", err)
		}

		for name, item := range map[string]*ContentItem{
			"empty title":  {Title: " ", Path: "/a"},
			"empty path":   {Title: "a"},
			"rating range": {Title: "a", Path: "/a", Rating: 9},
		} {
			if err := item.Validate(); err == nil {
				t.Errorf("%s: expected validation error", name)
			}
		}
	})

	t.Run("ContentUpdate applies only set fields", func(t *testing.T) {
		item := &ContentItem{Title: "Old", Rating: 1}
		rating := 4
		ContentUpdate{Rating: &rating}.Apply(item)

		if item.Title != "Old" || item.Rating != 4 {
			t.Errorf("unexpected item after update: %+v", item)
		}
	})

	t.Run("PlaylistItem resolves content once", func(t *testing.T) {
		calls := 0
		lookup := func(id ContentID) (*ContentItem, error) {
			calls++
			return &ContentItem{ID: id, Title: "x"}, nil
		}
		member := &PlaylistItem{PlaylistID: 1, MemberID: 2, ContentID: 3}

		for range 2 {
			item, err := member.Content(lookup)
			if err != nil || item.ID != 3 {
				t.Fatalf("Content() = %+v, %v", item, err)
			}
		}
		if calls != 1 {
			t.Errorf("expected 1 lookup, got %d", calls)
		}
		if member.Ref() != (MemberRef{PlaylistID: 1, MemberID: 2}) {
			t.Errorf("unexpected ref %v", member.Ref())
		}
	})
}
