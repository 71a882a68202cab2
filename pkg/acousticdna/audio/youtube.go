package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// YTMetadata is the subset of yt-dlp's JSON metadata needed to catalog a
// downloaded track.
type YTMetadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Uploader string  `json:"uploader"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
}

func pickArtist(meta YTMetadata) string {
	if strings.TrimSpace(meta.Artist) != "" {
		return meta.Artist
	}
	if strings.TrimSpace(meta.Channel) != "" {
		return meta.Channel
	}
	if strings.TrimSpace(meta.Uploader) != "" {
		return meta.Uploader
	}
	return "Unknown Artist"
}

// IsYouTubeURL reports whether urlStr points at youtube.com or youtu.be.
func IsYouTubeURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}

// DownloadYouTubeAudio fetches a YouTube video's metadata and best-effort
// audio stream using the go-ytdlp wrapper (replacing the teacher's raw
// os/exec yt-dlp invocations), returning the downloaded file's path plus
// its metadata. Callers run the result through Transcode to get a WAV the
// engine can Decode.
func DownloadYouTubeAudio(ctx context.Context, youtubeURL, outputDir string) (audioPath string, metadata *YTMetadata, err error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 3*time.Minute)
		defer cancel()
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating output dir %s: %w", outputDir, err)
	}

	ytdlp.MustInstall(ctx, nil)

	probe := ytdlp.New().
		NoPlaylist().
		NoWarnings().
		DumpJSON().
		SkipDownload()

	probeResult, err := probe.Run(ctx, youtubeURL)
	if err != nil {
		return "", nil, fmt.Errorf("yt-dlp metadata extraction failed: %w", err)
	}

	var meta YTMetadata
	if err := json.Unmarshal([]byte(probeResult.Stdout), &meta); err != nil {
		return "", nil, fmt.Errorf("parsing yt-dlp JSON: %w", err)
	}
	if strings.TrimSpace(meta.ID) == "" {
		return "", nil, fmt.Errorf("missing video ID in yt-dlp output")
	}
	if strings.TrimSpace(meta.Title) == "" {
		return "", nil, fmt.Errorf("missing title in yt-dlp output")
	}
	meta.Artist = pickArtist(meta)

	outputTemplate := filepath.Join(outputDir, meta.ID+".%(ext)s")
	download := ytdlp.New().
		FormatSort("ba").
		NoPlaylist().
		NoWarnings().
		Output(outputTemplate)

	if _, err := download.Run(ctx, youtubeURL); err != nil {
		return "", nil, fmt.Errorf("yt-dlp download failed: %w", err)
	}

	for _, ext := range []string{".m4a", ".webm", ".opus", ".mp3", ".aac", ".ogg"} {
		candidate := filepath.Join(outputDir, meta.ID+ext)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, &meta, nil
		}
	}
	return "", nil, fmt.Errorf("downloaded audio file not found for video %s", meta.ID)
}
