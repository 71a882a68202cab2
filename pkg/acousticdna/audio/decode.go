// Package audio implements the "external collaborator" decoder/transcoder
// referenced but deliberately left out of scope by the core engine: WAV PCM
// decoding, non-WAV transcoding via ffmpeg, metadata probing via ffprobe,
// and YouTube audio acquisition. None of this package is on the
// fingerprinting critical path; fingerprint/index/match/pipeline only ever
// see []float32 samples plus a channel count and sample rate.
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/enginerr"
)

// Decode reads a WAV file and returns its interleaved PCM samples as
// normalized float32 (range [-1, 1]), its channel count, and its source
// sample rate. Non-WAV containers are out of scope here — Transcode
// converts them to WAV first.
func Decode(path string) (samples []float32, channels, sourceRate int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: opening %s: %w", enginerr.ErrDecodeFailure, path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%w: %s is not a valid WAV file", enginerr.ErrDecodeFailure, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: decoding PCM from %s: %w", enginerr.ErrDecodeFailure, path, err)
	}

	floats := buf.AsFloat32Buffer()
	if bits := buf.SourceBitDepth; bits > 1 {
		scale := float32(int64(1) << (bits - 1))
		for i := range floats.Data {
			floats.Data[i] /= scale
		}
	}
	return floats.Data, buf.Format.NumChannels, int(dec.SampleRate), nil
}
