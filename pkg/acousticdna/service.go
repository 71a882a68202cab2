//go:build !js && !wasm
// +build !js,!wasm

package acousticdna

import (
	"context"
	"fmt"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/audio"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/index"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/match"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/pipeline"
	"github.com/landmarkfp/acousticdna/pkg/logger"
)

type acousticService struct {
	idx    index.Index
	log    Logger
	config *Config
}

// NewService wires the fingerprint/index/match/pipeline engine into a
// single Service, following the teacher's NewService shape: functional
// options over a defaultConfig, a default logger when none is given, and a
// default storage backend built from config when the caller doesn't supply
// one directly.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	idx := cfg.Index
	if idx == nil {
		if cfg.DBPath != "" {
			sqliteIdx, err := index.NewSQLiteIndex(cfg.DBPath)
			if err != nil {
				return nil, fmt.Errorf("creating sqlite index: %w", err)
			}
			idx = sqliteIdx
		} else {
			idx = index.NewMemIndex()
		}
	}

	return &acousticService{idx: idx, log: cfg.Logger, config: cfg}, nil
}

func (s *acousticService) fingerprintFile(audioPath string) ([]fingerprint.Peak, []fingerprint.Landmark, float64, error) {
	samples, channels, sourceRate, err := audio.Decode(audioPath)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("decoding %s: %w", audioPath, err)
	}

	spec, err := fingerprint.ToSpectrogram(samples, channels, sourceRate, s.config.Params)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("computing spectrogram for %s: %w", audioPath, err)
	}

	peaks := fingerprint.ExtractPeaks(spec, s.config.Params)
	landmarks := fingerprint.GenerateHashes(peaks, s.config.Params)
	rate := sourceRate
	if rate <= 0 {
		rate = s.config.Params.SampleRate
	}
	duration := float64(len(samples)) / float64(max(channels, 1)) / float64(rate)
	return peaks, landmarks, duration, nil
}

func (s *acousticService) AddTrack(ctx context.Context, audioPath, title, artist string) (string, error) {
	s.log.Infof("fingerprinting %s", audioPath)

	peaks, landmarks, duration, err := s.fingerprintFile(audioPath)
	if err != nil {
		return "", err
	}

	id, _, _ := pipeline.DefaultTrackNamer(audioPath)
	track := index.Track{
		ID:         id,
		Title:      title,
		Artist:     artist,
		SourcePath: audioPath,
		DurationS:  duration,
		NumPeaks:   len(peaks),
	}

	if err := s.idx.AddTrack(track, landmarks); err != nil {
		return "", fmt.Errorf("committing track: %w", err)
	}
	s.log.Infof("added track %s: %d peaks, %d hashes", id, len(peaks), len(landmarks))
	return id, nil
}

func (s *acousticService) AddTracks(ctx context.Context, paths []string, concurrency int, progress func(done, total int)) (IndexResult, error) {
	var onProgress pipeline.ProgressFunc
	if progress != nil {
		onProgress = func(done, total int, _ pipeline.FileResult) { progress(done, total) }
	}

	pipelineResult, err := pipeline.IndexPaths(ctx, s.idx, paths, concurrency, audio.Decode, pipeline.DefaultTrackNamer, s.config.Params, onProgress)

	result := IndexResult{}
	for _, ok := range pipelineResult.Succeeded {
		result.Succeeded = append(result.Succeeded, ok.TrackID)
	}
	for _, bad := range pipelineResult.Failed {
		result.Failed = append(result.Failed, FailedFile{Path: bad.Path, Err: bad.Err})
	}
	return result, err
}

func (s *acousticService) MatchQuery(ctx context.Context, audioPath string, k int) ([]MatchResult, error) {
	_, landmarks, _, err := s.fingerprintFile(audioPath)
	if err != nil {
		return nil, err
	}

	matches, err := match.Match(s.idx, landmarks, k, match.Options{}, s.config.Params)
	if err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}

	out := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		track, err := s.idx.GetTrack(m.TrackID)
		if err != nil {
			continue
		}
		out = append(out, MatchResult{Track: trackFromIndex(track), Score: m.Score, Offset: m.Offset})
	}
	return out, nil
}

func (s *acousticService) GetTrack(trackID string) (Track, error) {
	t, err := s.idx.GetTrack(trackID)
	if err != nil {
		return Track{}, err
	}
	return trackFromIndex(t), nil
}

func (s *acousticService) ListTracks() ([]Track, error) {
	tracks, err := s.idx.ListTracks()
	if err != nil {
		return nil, err
	}
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		out[i] = trackFromIndex(t)
	}
	return out, nil
}

func (s *acousticService) DeleteTrack(trackID string) error {
	return s.idx.Forget(trackID)
}

func (s *acousticService) Stats() (IndexStats, error) {
	stats, err := s.idx.Stats()
	if err != nil {
		return IndexStats{}, err
	}
	return IndexStats{NumTracks: stats.NumTracks, NumPostings: stats.NumPostings, NumUniqueHashes: stats.NumUniqueHashes}, nil
}

func (s *acousticService) Close() error {
	return s.idx.Close()
}
