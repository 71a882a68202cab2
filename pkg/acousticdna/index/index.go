// Package index implements the inverted landmark-hash index (component D):
// a map from LandmarkHash to (track_id, anchor_time) postings, plus the
// track-metadata store, with at-most-one-writer/many-readers concurrency.
package index

import (
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
)

// Track is a stable record for one indexed recording.
type Track struct {
	ID         string
	Title      string
	Artist     string
	SourcePath string
	DurationS  float64
	NumPeaks   int
	NumHashes  int
}

// Posting is an entry (track_id, anchor_time) stored against a hash key.
type Posting struct {
	TrackID   string
	AnchorIdx int
}

// Stats summarizes index occupancy.
type Stats struct {
	NumTracks      int
	NumPostings    int
	NumUniqueHashes int
}

// Index is the hash-index contract (§4.D): add_track, forget, lookup,
// get_track, list_tracks, stats. Implementations must honor the invariants
// in §3 (every posting's track_id is in tracks; forget removes a track's
// postings atomically; postings tolerate duplicate (hash, anchor_time))
// and the concurrency policy in §5 (add_track/forget are writers; lookup,
// get_track, list_tracks, stats are many-reader operations that proceed
// concurrently with in-flight writers, seeing a consistent snapshot).
type Index interface {
	// AddTrack commits a track and its landmarks atomically: either all of
	// the track's postings and its Track record become visible together,
	// or none do. Returns enginerr.ErrDuplicateTrack if track.ID is already
	// present.
	AddTrack(track Track, landmarks []fingerprint.Landmark) error

	// Forget removes a track record and all its postings. Idempotent:
	// forgetting an unknown track_id is not an error.
	Forget(trackID string) error

	// Lookup returns all postings for a hash, in any order, uncapped.
	// Callers that need to guard against a pathological hot hash (the
	// matcher does) use LookupN with an explicit cap.
	Lookup(hash fingerprint.LandmarkHash) ([]Posting, error)

	// LookupN is Lookup with an explicit cap on postings returned; maxN <= 0
	// means unlimited.
	LookupN(hash fingerprint.LandmarkHash, maxN int) ([]Posting, error)

	// GetTrack retrieves a track's metadata, or enginerr.ErrUnknownTrack.
	GetTrack(trackID string) (Track, error)

	// ListTracks returns a snapshot of all tracks, consistent with some
	// point in time.
	ListTracks() ([]Track, error)

	// Stats reports current index occupancy.
	Stats() (Stats, error)

	// Close releases any resources held by the index.
	Close() error
}
