package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultTrackNamer derives a track ID as a fresh UUID (spec.md §3: "opaque,
// typically content-derived" — a UUID is stable and collision-free without
// requiring callers to fingerprint the file twice) and a Title from the
// file's base name with its extension stripped. Artist is left blank;
// callers with richer metadata should supply their own TrackNamer.
func DefaultTrackNamer(path string) (id, title, artist string) {
	base := filepath.Base(path)
	title = strings.TrimSuffix(base, filepath.Ext(base))
	return uuid.NewString(), title, ""
}
