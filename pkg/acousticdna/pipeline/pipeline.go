// Package pipeline implements the indexing pipeline (component F): a
// bounded fan-out over a set of audio files, each decoded, fingerprinted,
// and committed into an Index, with progress reporting and cooperative
// cancellation checked at file boundaries.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/index"
)

// Decoder loads a file into mono/interleaved PCM samples plus its source
// sample rate. audio.Decode satisfies this; it is injected here rather than
// imported directly so pipeline stays decoder-agnostic, matching spec.md's
// framing of codec decoding as an external collaborator.
type Decoder func(path string) (samples []float32, channels, sourceRate int, err error)

// TrackNamer derives a Track's ID/Title/Artist from a file path. Callers
// that only have bare file paths can use DefaultTrackNamer.
type TrackNamer func(path string) (id, title, artist string)

// FileResult reports the outcome of indexing a single file.
type FileResult struct {
	Path      string
	TrackID   string
	NumPeaks  int
	NumHashes int
	Err       error
}

// ProgressFunc is called after each file completes (success or failure).
// Progress is reported in file counts only; there is no byte-based progress.
type ProgressFunc func(done, total int, last FileResult)

// Result summarizes a full IndexPaths run.
type Result struct {
	Succeeded []FileResult
	Failed    []FileResult
}

// Summary renders a one-line humanized summary, e.g. "42 of 50 files indexed".
func (r Result) Summary() string {
	total := len(r.Succeeded) + len(r.Failed)
	return fmt.Sprintf("%s of %s files indexed", humanize.Comma(int64(len(r.Succeeded))), humanize.Comma(int64(total)))
}

// IndexPaths fans out over paths with up to `concurrency` workers, decoding
// and fingerprinting each file and committing one index.AddTrack per file.
// Cancellation via ctx is cooperative: in-flight files run to completion,
// but no new file starts once ctx is done, per spec.md §5's indexing
// pipeline cancellation policy.
func IndexPaths(
	ctx context.Context,
	idx index.Index,
	paths []string,
	concurrency int,
	decode Decoder,
	namer TrackNamer,
	p fingerprint.Params,
	progress ProgressFunc,
) (Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	if namer == nil {
		namer = DefaultTrackNamer
	}

	var (
		mu     sync.Mutex
		result Result
		done   int
	)
	total := len(paths)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, path := range paths {
		select {
		case <-ctx.Done():
		default:
		}
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()

			fr := indexOneFile(idx, path, decode, namer, p)

			mu.Lock()
			done++
			if fr.Err != nil {
				result.Failed = append(result.Failed, fr)
			} else {
				result.Succeeded = append(result.Succeeded, fr)
			}
			if progress != nil {
				progress(done, total, fr)
			}
			mu.Unlock()
		}(path)
	}

	wg.Wait()
	return result, ctx.Err()
}

func indexOneFile(idx index.Index, path string, decode Decoder, namer TrackNamer, p fingerprint.Params) FileResult {
	samples, channels, sourceRate, err := decode(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("decoding %s: %w", path, err)}
	}

	spec, err := fingerprint.ToSpectrogram(samples, channels, sourceRate, p)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("spectrogram for %s: %w", path, err)}
	}

	peaks := fingerprint.ExtractPeaks(spec, p)
	landmarks := fingerprint.GenerateHashes(peaks, p)

	rate := sourceRate
	if rate <= 0 {
		rate = p.SampleRate
	}
	id, title, artist := namer(path)
	track := index.Track{
		ID:         id,
		Title:      title,
		Artist:     artist,
		SourcePath: path,
		DurationS:  float64(len(samples)) / float64(max(channels, 1)) / float64(rate),
		NumPeaks:   len(peaks),
	}

	if err := idx.AddTrack(track, landmarks); err != nil {
		return FileResult{Path: path, TrackID: id, Err: fmt.Errorf("committing %s: %w", path, err)}
	}

	return FileResult{Path: path, TrackID: id, NumPeaks: len(peaks), NumHashes: len(landmarks)}
}
