package index

import (
	"errors"
	"sync"
	"testing"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/enginerr"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
)

func landmarksAt(hashes ...fingerprint.LandmarkHash) []fingerprint.Landmark {
	out := make([]fingerprint.Landmark, len(hashes))
	for i, h := range hashes {
		out[i] = fingerprint.Landmark{Hash: h, AnchorIdx: i}
	}
	return out
}

// TestMemIndexPostingIntegrity is testable property 1: every posting
// returned by Lookup belongs to a track present in ListTracks/GetTrack.
func TestMemIndexPostingIntegrity(t *testing.T) {
	idx := NewMemIndex()
	lm := landmarksAt(1, 2, 3)
	if err := idx.AddTrack(Track{ID: "t1"}, lm); err != nil {
		t.Fatal(err)
	}

	for _, l := range lm {
		postings, err := idx.Lookup(l.Hash)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range postings {
			if _, err := idx.GetTrack(p.TrackID); err != nil {
				t.Errorf("posting references unknown track %q: %v", p.TrackID, err)
			}
		}
	}
}

func TestMemIndexDuplicateTrackRejected(t *testing.T) {
	idx := NewMemIndex()
	lm := landmarksAt(1)
	if err := idx.AddTrack(Track{ID: "dup"}, lm); err != nil {
		t.Fatal(err)
	}
	err := idx.AddTrack(Track{ID: "dup"}, lm)
	if !errors.Is(err, enginerr.ErrDuplicateTrack) {
		t.Fatalf("expected ErrDuplicateTrack, got %v", err)
	}
}

func TestMemIndexUnknownTrack(t *testing.T) {
	idx := NewMemIndex()
	_, err := idx.GetTrack("nope")
	if !errors.Is(err, enginerr.ErrUnknownTrack) {
		t.Fatalf("expected ErrUnknownTrack, got %v", err)
	}
}

// TestMemIndexForgetCompleteness is testable property 7: after forget, no
// posting for that track is reachable and stats reflect the removal.
func TestMemIndexForgetCompleteness(t *testing.T) {
	idx := NewMemIndex()
	lmA := landmarksAt(1, 2)
	lmB := landmarksAt(2, 3)
	if err := idx.AddTrack(Track{ID: "a"}, lmA); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddTrack(Track{ID: "b"}, lmB); err != nil {
		t.Fatal(err)
	}

	if err := idx.Forget("a"); err != nil {
		t.Fatal(err)
	}

	if _, err := idx.GetTrack("a"); !errors.Is(err, enginerr.ErrUnknownTrack) {
		t.Fatalf("expected track a to be gone, got %v", err)
	}

	for _, h := range []fingerprint.LandmarkHash{1, 2, 3} {
		postings, err := idx.Lookup(h)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range postings {
			if p.TrackID == "a" {
				t.Fatalf("hash %d still has a posting for forgotten track a", h)
			}
		}
	}

	postings, _ := idx.Lookup(2)
	if len(postings) != 1 || postings[0].TrackID != "b" {
		t.Fatalf("expected hash 2 to retain only b's posting, got %+v", postings)
	}
}

func TestMemIndexForgetIdempotent(t *testing.T) {
	idx := NewMemIndex()
	if err := idx.Forget("never-existed"); err != nil {
		t.Fatalf("forgetting an unknown track must not error, got %v", err)
	}
}

// TestMemIndexConcurrentAddTrackAtomicity is testable property 6: after
// concurrent AddTrack calls, no write is lost and the committed posting
// count agrees with the one landmark each track was added with.
func TestMemIndexConcurrentAddTrackAtomicity(t *testing.T) {
	idx := NewMemIndex()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			_ = idx.AddTrack(Track{ID: id + string(rune(i))}, landmarksAt(fingerprint.LandmarkHash(i)))
		}(i)
	}
	wg.Wait()

	tracks, err := idx.ListTracks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != n {
		t.Fatalf("expected %d tracks, got %d", n, len(tracks))
	}

	stats, err := idx.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.NumTracks != n {
		t.Fatalf("expected stats.NumTracks=%d, got %d", n, stats.NumTracks)
	}
	if stats.NumPostings != n {
		t.Fatalf("expected stats.NumPostings=%d, got %d", n, stats.NumPostings)
	}
}

func TestMemIndexLookupNCaps(t *testing.T) {
	idx := NewMemIndex()
	lm := make([]fingerprint.Landmark, 10)
	for i := range lm {
		lm[i] = fingerprint.Landmark{Hash: 7, AnchorIdx: i}
	}
	if err := idx.AddTrack(Track{ID: "many"}, lm); err != nil {
		t.Fatal(err)
	}
	postings, err := idx.LookupN(7, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(postings) != 3 {
		t.Fatalf("expected LookupN to cap at 3, got %d", len(postings))
	}
}

func TestMemIndexCloseIsNoop(t *testing.T) {
	idx := NewMemIndex()
	if err := idx.Close(); err != nil {
		t.Fatalf("Close on MemIndex should never error, got %v", err)
	}
}
