package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// TranscodeConfig tunes ffmpeg's output format.
type TranscodeConfig struct {
	SampleRate int // e.g. 11025, 22050, 44100; zero defaults to 11025
}

// Transcode converts an arbitrary audio file to mono 16-bit PCM WAV via an
// ffmpeg subprocess, writing the result under outputDir with the input's
// base name. Adapted from the teacher's ConvertToMonoWAV: same ffmpeg
// invocation and atomic tmp-file-then-rename pattern, generalized to accept
// a caller-supplied context deadline.
func Transcode(ctx context.Context, inputPath, outputDir string, cfg TranscodeConfig) (string, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 11025
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir %s: %w", outputDir, err)
	}

	baseName := filepath.Base(inputPath)
	outputPath := filepath.Join(outputDir, baseName)
	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %w (%s)", err, out)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return "", fmt.Errorf("moving transcoded file into place: %w", err)
	}
	return outputPath, nil
}
