package match

import (
	"testing"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/index"
)

func lm(hash fingerprint.LandmarkHash, anchor int) fingerprint.Landmark {
	return fingerprint.Landmark{Hash: hash, AnchorIdx: anchor}
}

func TestMatchEmptyQueryYieldsNoResults(t *testing.T) {
	idx := index.NewMemIndex()
	results, err := Match(idx, nil, 5, Options{}, fingerprint.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Fatalf("expected nil results for an empty query, got %v", results)
	}
}

func TestMatchExactTrackWinsWithScoreOne(t *testing.T) {
	idx := index.NewMemIndex()
	landmarks := []fingerprint.Landmark{lm(1, 0), lm(2, 10), lm(3, 20)}
	if err := idx.AddTrack(index.Track{ID: "song-a"}, landmarks); err != nil {
		t.Fatal(err)
	}

	results, err := Match(idx, landmarks, 5, Options{}, fingerprint.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one candidate, got %d", len(results))
	}
	if results[0].TrackID != "song-a" {
		t.Fatalf("expected song-a to win, got %s", results[0].TrackID)
	}
	if results[0].Score != 1.0 {
		t.Fatalf("expected score 1.0 for an exact match, got %f", results[0].Score)
	}
	if results[0].Offset != 0 {
		t.Fatalf("expected offset 0 for an identical query, got %d", results[0].Offset)
	}
}

// TestMatchScoreStaysInUnitRange is testable property: score in [0, 1],
// even when a single hash has many postings for the same track (a
// pathologically repetitive recording) that would otherwise let one query
// landmark cast multiple votes into the same bucket.
func TestMatchScoreStaysInUnitRange(t *testing.T) {
	idx := index.NewMemIndex()
	// ten identical landmarks, all under hash=1, anchored at the same time:
	// an adversarial case for the "one vote per query landmark" rule.
	repetitive := make([]fingerprint.Landmark, 10)
	for i := range repetitive {
		repetitive[i] = lm(1, 0)
	}
	if err := idx.AddTrack(index.Track{ID: "repetitive"}, repetitive); err != nil {
		t.Fatal(err)
	}

	query := []fingerprint.Landmark{lm(1, 0)}
	results, err := Match(idx, query, 5, Options{}, fingerprint.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one candidate, got %d", len(results))
	}
	if results[0].Score < 0 || results[0].Score > 1 {
		t.Fatalf("score out of [0,1] range: %f", results[0].Score)
	}
	if results[0].Score != 1.0 {
		t.Fatalf("expected exactly 1.0 (one query landmark, one vote), got %f", results[0].Score)
	}
}

func TestMatchOffsetConsistencyBeatsPartialOverlap(t *testing.T) {
	idx := index.NewMemIndex()
	// song-a: landmarks at a consistent offset from the query (shifted by 100).
	if err := idx.AddTrack(index.Track{ID: "song-a"}, []fingerprint.Landmark{
		lm(1, 100), lm(2, 110), lm(3, 120),
	}); err != nil {
		t.Fatal(err)
	}
	// song-b: only one landmark overlaps with the query at all.
	if err := idx.AddTrack(index.Track{ID: "song-b"}, []fingerprint.Landmark{
		lm(1, 5), lm(9, 50), lm(8, 70),
	}); err != nil {
		t.Fatal(err)
	}

	query := []fingerprint.Landmark{lm(1, 0), lm(2, 10), lm(3, 20)}
	results, err := Match(idx, query, 5, Options{}, fingerprint.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 || results[0].TrackID != "song-a" {
		t.Fatalf("expected song-a to rank first due to offset consistency, got %+v", results)
	}
	if results[0].Offset != 100 {
		t.Fatalf("expected winning offset 100, got %d", results[0].Offset)
	}
}

func TestMatchTopKTruncates(t *testing.T) {
	idx := index.NewMemIndex()
	for _, id := range []string{"a", "b", "c"} {
		if err := idx.AddTrack(index.Track{ID: id}, []fingerprint.Landmark{lm(1, 0)}); err != nil {
			t.Fatal(err)
		}
	}
	results, err := Match(idx, []fingerprint.Landmark{lm(1, 0)}, 2, Options{}, fingerprint.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected results truncated to k=2, got %d", len(results))
	}
}

func TestMatchNoMatchingHashesYieldsNoResults(t *testing.T) {
	idx := index.NewMemIndex()
	if err := idx.AddTrack(index.Track{ID: "song-a"}, []fingerprint.Landmark{lm(1, 0)}); err != nil {
		t.Fatal(err)
	}
	results, err := Match(idx, []fingerprint.Landmark{lm(999, 0)}, 5, Options{}, fingerprint.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no candidates for a query with no matching hashes, got %v", results)
	}
}
