package acousticdna

import "github.com/landmarkfp/acousticdna/pkg/acousticdna/index"

// Track is the public, stable view of an indexed recording.
type Track struct {
	ID         string
	Title      string
	Artist     string
	SourcePath string
	DurationS  float64
	NumPeaks   int
	NumHashes  int
}

func trackFromIndex(t index.Track) Track {
	return Track{
		ID:         t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		SourcePath: t.SourcePath,
		DurationS:  t.DurationS,
		NumPeaks:   t.NumPeaks,
		NumHashes:  t.NumHashes,
	}
}

// MatchResult is one ranked candidate from a MatchQuery call.
type MatchResult struct {
	Track  Track
	Score  float64
	Offset int
}

// IndexStats mirrors index.Stats at the service boundary.
type IndexStats struct {
	NumTracks       int
	NumPostings     int
	NumUniqueHashes int
}

// IndexResult summarizes a batch AddTracks call.
type IndexResult struct {
	Succeeded []string // track IDs
	Failed    []FailedFile
}

// FailedFile names a path that failed to index and why.
type FailedFile struct {
	Path string
	Err  error
}
