package playlists

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
)

// parseThumbnail checks the form of a thumbnail reference and returns the file path it names.
// An empty reference returns an empty path, which clears the thumbnail.
func parseThumbnail(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if strings.TrimSpace(ref) == "" {
		return "", tasks.Invalid("thumbnail reference is blank")
	}

	if !strings.Contains(ref, "://") {
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", tasks.Invalid("thumbnail reference %q: %v", ref, err)
	}
	if u.Scheme != "file" {
		return "", tasks.Invalid("thumbnail reference %q: unsupported scheme %q", ref, u.Scheme)
	}
	if u.Path == "" {
		return "", tasks.Invalid("thumbnail reference %q has no path", ref)
	}
	return u.Path, nil
}

// resolveThumbnail requires path to be an existing regular file and returns it as an absolute
// file URI. An empty path resolves to an empty value.
func resolveThumbnail(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: thumbnail %q: %v", shared.ErrInvalidValues, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: thumbnail %q: %v", shared.ErrInvalidValues, path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: thumbnail %q is not a regular file", shared.ErrInvalidValues, path)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
