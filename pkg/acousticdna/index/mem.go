package index

import (
	"sort"
	"sync"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/enginerr"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
)

// MemIndex is the in-memory hash map shape recommended by §4.D for a
// corpus that fits in memory: LandmarkHash -> []Posting, with tracks kept
// in a side map. A single sync.RWMutex gives at-most-one-writer/many-reader
// semantics; AddTrack and Forget take the writer lock for the duration of
// one track's commit, so readers never observe a partially inserted track.
type MemIndex struct {
	mu       sync.RWMutex
	postings map[fingerprint.LandmarkHash][]Posting
	tracks   map[string]Track
}

// NewMemIndex constructs an empty in-memory index.
func NewMemIndex() *MemIndex {
	return &MemIndex{
		postings: make(map[fingerprint.LandmarkHash][]Posting),
		tracks:   make(map[string]Track),
	}
}

// AddTrack commits a track and its postings atomically under the writer
// lock. Postings are prepared into a per-hash batch before the lock is
// taken so the critical section is pure map insertion, not computation —
// the "batch in groups of at least 1000" guidance from §4.D is naturally
// satisfied since every posting for a track commits in a single lock hold.
func (m *MemIndex) AddTrack(track Track, landmarks []fingerprint.Landmark) error {
	batch := make(map[fingerprint.LandmarkHash][]Posting, len(landmarks))
	for _, lm := range landmarks {
		batch[lm.Hash] = append(batch[lm.Hash], Posting{TrackID: track.ID, AnchorIdx: lm.AnchorIdx})
	}
	track.NumHashes = len(landmarks)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tracks[track.ID]; exists {
		return enginerr.ErrDuplicateTrack
	}

	for h, postings := range batch {
		m.postings[h] = append(m.postings[h], postings...)
	}
	m.tracks[track.ID] = track
	return nil
}

// Forget removes a track and all its postings. Idempotent.
func (m *MemIndex) Forget(trackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tracks[trackID]; !exists {
		return nil
	}
	delete(m.tracks, trackID)

	for h, postings := range m.postings {
		filtered := postings[:0:0]
		for _, p := range postings {
			if p.TrackID != trackID {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			delete(m.postings, h)
		} else {
			m.postings[h] = filtered
		}
	}
	return nil
}

// Lookup returns postings for a hash in any order, uncapped.
func (m *MemIndex) Lookup(hash fingerprint.LandmarkHash) ([]Posting, error) {
	return m.LookupN(hash, 0)
}

// LookupN returns postings for a hash, capped at maxN (maxN<=0 means
// unlimited). This is a many-reader operation: it only takes the read
// lock and proceeds concurrently with other readers and with in-flight
// writers, observing a snapshot consistent with some set of completed
// writes.
func (m *MemIndex) LookupN(hash fingerprint.LandmarkHash, maxN int) ([]Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	postings := m.postings[hash]
	if maxN > 0 && len(postings) > maxN {
		postings = postings[:maxN]
	}
	out := make([]Posting, len(postings))
	copy(out, postings)
	return out, nil
}

// GetTrack retrieves a track's metadata.
func (m *MemIndex) GetTrack(trackID string) (Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tracks[trackID]
	if !ok {
		return Track{}, enginerr.ErrUnknownTrack
	}
	return t, nil
}

// ListTracks returns a point-in-time snapshot of all tracks.
func (m *MemIndex) ListTracks() ([]Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Track, 0, len(m.tracks))
	for _, t := range m.tracks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Stats reports current occupancy.
func (m *MemIndex) Stats() (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	numPostings := 0
	for _, postings := range m.postings {
		numPostings += len(postings)
	}
	return Stats{
		NumTracks:       len(m.tracks),
		NumPostings:     numPostings,
		NumUniqueHashes: len(m.postings),
	}, nil
}

// Close is a no-op for the in-memory index.
func (m *MemIndex) Close() error { return nil }
