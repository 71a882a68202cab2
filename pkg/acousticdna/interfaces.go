package acousticdna

import (
	"context"
)

// Service ties the fingerprint/index/match/pipeline engine together behind
// the track-oriented surface spec.md's MODULE BOUNDARIES leave to an
// external collaborator to assemble.
type Service interface {
	// AddTrack decodes audioPath, fingerprints it, and commits it to the
	// index under title/artist. Returns the assigned track ID.
	AddTrack(ctx context.Context, audioPath, title, artist string) (string, error)

	// AddTracks fans out AddTrack over every file in paths with bounded
	// concurrency, reporting progress as files complete.
	AddTracks(ctx context.Context, paths []string, concurrency int, progress func(done, total int)) (IndexResult, error)

	// MatchQuery decodes audioPath, fingerprints it, and returns the top k
	// candidate tracks ranked by score.
	MatchQuery(ctx context.Context, audioPath string, k int) ([]MatchResult, error)

	// GetTrack retrieves a track's metadata by ID.
	GetTrack(trackID string) (Track, error)

	// ListTracks returns all indexed tracks.
	ListTracks() ([]Track, error)

	// DeleteTrack removes a track and all its postings.
	DeleteTrack(trackID string) error

	// Stats reports current index occupancy.
	Stats() (IndexStats, error)

	// Close releases all resources held by the service.
	Close() error
}

// Logger is the logging contract used by the service; pkg/logger.Logger
// satisfies it, and callers may supply their own implementation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
