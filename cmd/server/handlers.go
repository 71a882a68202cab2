package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/audio"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/enginerr"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/index"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/match"
	"github.com/landmarkfp/acousticdna/pkg/logger"
)

// Server encapsulates the HTTP server and its dependencies.
type Server struct {
	service acousticdna.Service
	idx     index.Index // same backing index, exposed for the landmarks fast-path
	params  fingerprint.Params
	config  *ServerConfig
	log     acousticdna.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
}

// NewServer creates a new server instance.
func NewServer(service acousticdna.Service, idx index.Index, params fingerprint.Params, config *ServerConfig) *Server {
	return &Server{
		service: service,
		idx:     idx,
		params:  params,
		config:  config,
		log:     logger.GetLogger(),
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "AcousticDNA API",
		"version": "2.0.0",
		"endpoints": map[string]string{
			"health":          "GET /health",
			"metrics":         "GET /api/health/metrics",
			"tracks":          "GET /api/tracks",
			"addTrackFile":    "POST /api/tracks",
			"addTrackYouTube": "POST /api/tracks/youtube",
			"getTrack":        "GET /api/tracks/{id}",
			"deleteTrack":     "DELETE /api/tracks/{id}",
			"matchFile":       "POST /api/match",
			"matchLandmarks":  "POST /api/match/landmarks",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats()
	if err != nil {
		s.log.Errorf("failed to get index stats: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:          "healthy",
		DatabasePath:    s.config.DBPath,
		TrackCount:      stats.NumTracks,
		PostingCount:    stats.NumPostings,
		UniqueHashCount: stats.NumUniqueHashes,
		SampleRate:      s.config.SampleRate,
	})
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.service.ListTracks()
	if err != nil {
		s.log.Errorf("failed to list tracks: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to retrieve tracks")
		return
	}

	dtos := make([]TrackDTO, len(tracks))
	for i, t := range tracks {
		dtos[i] = trackToDTO(t)
	}
	s.respondJSON(w, http.StatusOK, ListTracksResponse{Tracks: dtos, Count: len(dtos)})
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request, trackID string) {
	track, err := s.service.GetTrack(trackID)
	if err != nil {
		s.log.Warnf("track not found: %s", trackID)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("track %q not found", trackID))
		return
	}
	s.respondJSON(w, http.StatusOK, trackToDTO(track))
}

func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request, trackID string) {
	track, err := s.service.GetTrack(trackID)
	if errors.Is(err, enginerr.ErrUnknownTrack) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("track %q not found", trackID))
		return
	} else if err != nil {
		s.log.Errorf("failed to look up track %s: %v", trackID, err)
		s.respondError(w, http.StatusInternalServerError, "failed to delete track")
		return
	}

	if err := s.service.DeleteTrack(trackID); err != nil {
		s.log.Errorf("failed to delete track %s: %v", trackID, err)
		s.respondError(w, http.StatusInternalServerError, "failed to delete track")
		return
	}

	s.log.Infof("deleted track: %s by %s (ID: %s)", track.Title, track.Artist, trackID)
	s.respondJSON(w, http.StatusOK, DeleteTrackResponse{Message: "track deleted successfully", ID: trackID})
}

func (s *Server) handleAddTrackFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(100 << 20); err != nil {
		s.log.Errorf("failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "failed to parse form data")
		return
	}

	title := r.FormValue("title")
	artist := r.FormValue("artist")
	if title == "" || artist == "" {
		s.respondError(w, http.StatusBadRequest, "title and artist are required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.log.Errorf("failed to get audio file: %v", err)
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), header.Filename))
	if err := saveUpload(file, tempFile); err != nil {
		s.log.Errorf("failed to save upload: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to process upload")
		return
	}
	defer os.Remove(tempFile)

	s.log.Infof("adding track from file: %s by %s", title, artist)
	id, err := s.service.AddTrack(ctx, tempFile, title, artist)
	if err != nil {
		s.log.Errorf("failed to add track: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to add track: %v", err))
		return
	}

	s.log.Infof("added track %s by %s (ID: %s)", title, artist, id)
	s.respondJSON(w, http.StatusCreated, AddTrackResponse{Message: "track added successfully", ID: id, Title: title, Artist: artist})
}

func (s *Server) handleAddTrackYouTube(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var req AddTrackYouTubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Infof("adding track from YouTube URL: %s", req.YouTubeURL)

	downloadedPath, ytMeta, err := audio.DownloadYouTubeAudio(ctx, req.YouTubeURL, s.config.TempDir)
	if err != nil {
		s.log.Errorf("failed to download YouTube video: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to download YouTube video: %v", err))
		return
	}
	defer os.Remove(downloadedPath)

	wavPath, err := audio.Transcode(ctx, downloadedPath, s.config.TempDir, audio.TranscodeConfig{SampleRate: s.config.SampleRate})
	if err != nil {
		s.log.Errorf("failed to transcode downloaded audio: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to transcode downloaded audio: %v", err))
		return
	}
	defer os.Remove(wavPath)

	title := req.Title
	if title == "" {
		title = ytMeta.Title
	}
	artist := req.Artist
	if artist == "" {
		artist = ytMeta.Artist
	}
	if title == "" || artist == "" {
		s.respondError(w, http.StatusBadRequest, "could not determine title or artist from YouTube metadata; please provide them explicitly")
		return
	}

	id, err := s.service.AddTrack(ctx, wavPath, title, artist)
	if err != nil {
		s.log.Errorf("failed to add track: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to add track: %v", err))
		return
	}

	s.log.Infof("added track from YouTube: %s by %s (ID: %s)", title, artist, id)
	s.respondJSON(w, http.StatusCreated, AddTrackResponse{Message: "track added successfully from YouTube", ID: id, Title: title, Artist: artist})
}

func (s *Server) handleMatchFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(50 << 20); err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to parse form data")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("query_%d_%s", time.Now().UnixNano(), header.Filename))
	if err := saveUpload(file, tempFile); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to process upload")
		return
	}
	defer os.Remove(tempFile)

	s.log.Infof("matching uploaded file: %s", header.Filename)
	matches, err := s.service.MatchQuery(ctx, tempFile, 10)
	if err != nil {
		s.log.Errorf("failed to match query: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to match: %v", err))
		return
	}

	dtos := make([]MatchResultDTO, len(matches))
	for i, m := range matches {
		dtos[i] = MatchResultDTO{TrackID: m.Track.ID, Title: m.Track.Title, Artist: m.Track.Artist, Score: m.Score, Offset: m.Offset}
	}
	s.log.Infof("match complete: found %d matches", len(dtos))
	s.respondJSON(w, http.StatusOK, MatchResponse{Matches: dtos, Count: len(dtos)})
}

// handleMatchLandmarksPost handles a client that has already computed
// landmarks locally (the WASM build) and only needs to query the index.
func (s *Server) handleMatchLandmarksPost(w http.ResponseWriter, r *http.Request) {
	var req MatchLandmarksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	landmarks := make([]fingerprint.Landmark, len(req.Landmarks))
	for i, lm := range req.Landmarks {
		landmarks[i] = fingerprint.Landmark{Hash: fingerprint.LandmarkHash(lm.Hash), AnchorIdx: lm.AnchorIdx}
	}

	s.log.Infof("matching %d client-computed landmarks", len(landmarks))
	results, err := match.Match(s.idx, landmarks, 10, match.Options{}, s.params)
	if err != nil {
		s.log.Errorf("failed to match landmarks: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to match: %v", err))
		return
	}

	dtos := make([]MatchResultDTO, 0, len(results))
	for _, res := range results {
		track, err := s.idx.GetTrack(res.TrackID)
		if err != nil {
			continue
		}
		dtos = append(dtos, MatchResultDTO{TrackID: track.ID, Title: track.Title, Artist: track.Artist, Score: res.Score, Offset: res.Offset})
	}
	s.log.Infof("landmark match complete: found %d matches", len(dtos))
	s.respondJSON(w, http.StatusOK, MatchResponse{Matches: dtos, Count: len(dtos)})
}

func saveUpload(src io.Reader, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, src)
	return err
}

func trackToDTO(t acousticdna.Track) TrackDTO {
	return TrackDTO{ID: t.ID, Title: t.Title, Artist: t.Artist, DurationS: t.DurationS, NumPeaks: t.NumPeaks, NumHashes: t.NumHashes}
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTracks(w, r)
	case http.MethodPost:
		s.handleAddTrackFile(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Path[len("/api/tracks/"):]
	if idStr == "" || idStr == "youtube" {
		s.respondError(w, http.StatusBadRequest, "track ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetTrack(w, r, idStr)
	case http.MethodDelete:
		s.handleDeleteTrack(w, r, idStr)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.handleMatchFile(w, r)
}

func (s *Server) handleMatchLandmarks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.handleMatchLandmarksPost(w, r)
}
