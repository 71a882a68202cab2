// Package match implements the matcher (component E): histogram-of-offset
// voting over an Index's postings, producing a ranked, score-bounded list
// of candidate tracks for a query's landmarks.
package match

import (
	"sort"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/index"
)

// Result is one ranked candidate.
type Result struct {
	TrackID string
	Score   float64 // in [0, 1]
	Offset  int      // the winning (anchor_time_db - anchor_time_query) bucket
	Votes   int      // raw vote count behind Score, before normalization
}

// Options tunes a single Match call. A zero value is valid and uses the
// fingerprint.Params default for MaxPostingsPerHashQuery.
type Options struct {
	// MaxPostingsPerHashQuery caps how many postings are consulted for any
	// one query hash, guarding against a single pathologically common hash
	// dominating the query's cost. Zero means use p.MaxPostingsPerHashQuery.
	MaxPostingsPerHashQuery int
}

// Match votes query landmarks against idx and returns the top k candidates
// by score, descending. Ties break by TrackID for determinism (testable
// property 3).
//
// For each query landmark (hash, anchor_time_query), every posting
// (track_id, anchor_time_db) under that hash casts one vote for
// (track_id, anchor_time_db - anchor_time_query). For each candidate track,
// the winning offset is the bucket with the most votes; Score is that
// winning count divided by the number of query landmarks, which bounds
// Score to [0, 1] by construction since a query landmark contributes at
// most one vote to any single (track, offset) bucket — the same hash
// appearing twice in the query still only ever adds one vote per posting
// it matches, so no single (track, offset) bucket can exceed
// len(landmarks) votes.
func Match(idx index.Index, landmarks []fingerprint.Landmark, k int, opts Options, p fingerprint.Params) ([]Result, error) {
	if len(landmarks) == 0 || k <= 0 {
		return nil, nil
	}

	maxPostings := opts.MaxPostingsPerHashQuery
	if maxPostings <= 0 {
		maxPostings = p.MaxPostingsPerHashQuery
	}

	// votes[trackID][offset] = count, but each query landmark may only
	// contribute once to a given (trackID, offset) cell even if a hash
	// collision gives it multiple matching postings at the same offset.
	votes := make(map[string]map[int]int)

	for _, lm := range landmarks {
		postings, err := idx.LookupN(lm.Hash, maxPostings)
		if err != nil {
			return nil, err
		}
		// contributed tracks which (trackID, offset) pairs this one query
		// landmark has already voted for, so duplicate postings at the same
		// offset (e.g. a track with a repeated landmark) don't inflate the
		// vote past one-per-query-landmark.
		contributed := make(map[string]map[int]bool)
		for _, post := range postings {
			offset := post.AnchorIdx - lm.AnchorIdx
			if contributed[post.TrackID] == nil {
				contributed[post.TrackID] = make(map[int]bool)
			}
			if contributed[post.TrackID][offset] {
				continue
			}
			contributed[post.TrackID][offset] = true

			if votes[post.TrackID] == nil {
				votes[post.TrackID] = make(map[int]int)
			}
			votes[post.TrackID][offset]++
		}
	}

	results := make([]Result, 0, len(votes))
	total := float64(len(landmarks))
	for trackID, offsets := range votes {
		bestOffset, bestCount := 0, 0
		for offset, count := range offsets {
			if count > bestCount || (count == bestCount && offset < bestOffset) {
				bestOffset, bestCount = offset, count
			}
		}
		results = append(results, Result{
			TrackID: trackID,
			Score:   float64(bestCount) / total,
			Offset:  bestOffset,
			Votes:   bestCount,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].TrackID < results[j].TrackID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
