package fingerprint

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrogram is a dense magnitude spectrogram S[f,t], stored frame-major:
// Frames[t] holds the FBins() magnitudes for time frame t. Magnitudes are
// non-negative and log-compressed (log1p) so index and query builds stay
// on a consistent dynamic-range scale.
type Spectrogram struct {
	Frames [][]float64
	Bins   int
}

// NumFrames returns T_FRAMES.
func (s *Spectrogram) NumFrames() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// At returns S[f,t].
func (s *Spectrogram) At(f, t int) float64 {
	return s.Frames[t][f]
}

// hann returns a Hann window of length n, per the front end contract.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// resampleLinear resamples from srcRate to dstRate by linear interpolation
// between neighbouring samples. No anti-aliasing low-pass filter is applied,
// so content above the new Nyquist frequency aliases when downsampling. The
// same resampler runs on both the index and the query path, so both paths
// see identical output for identical input.
func resampleLinear(samples []float64, srcRate, dstRate int) []float64 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}
	ratio := float64(dstRate) / float64(srcRate)
	outLen := int(float64(len(samples)) * ratio)
	out := make([]float64, outLen)
	for i := range out {
		srcPos := float64(i) / ratio
		i0 := int(srcPos)
		if i0 >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := srcPos - float64(i0)
		out[i] = samples[i0]*(1-frac) + samples[i0+1]*frac
	}
	return out
}

// monoMix averages interleaved multi-channel samples down to mono.
func monoMix(samples []float32, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(samples))
		for i, v := range samples {
			out[i] = float64(v)
		}
		return out
	}
	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(samples[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// normalizePeak scales samples so the max absolute value is 1.0, if it
// exceeds 1.0. Tolerates clipped/integer-scaled input. Returns the peak
// magnitude seen so callers can detect all-silence input.
func normalizePeak(samples []float64) (peak float64) {
	for _, v := range samples {
		a := math.Abs(v)
		if a > peak {
			peak = a
		}
	}
	if peak > 1.0 {
		inv := 1.0 / peak
		for i := range samples {
			samples[i] *= inv
		}
	}
	return peak
}

// magnitudeSTFT computes the magnitude Short-Time Fourier Transform of
// samples using a Hann window of length nfft and the given hop, compressing
// magnitudes with log1p for a consistent dynamic range.
func magnitudeSTFT(samples []float64, nfft, hop int) [][]float64 {
	window := hann(nfft)
	fBins := nfft/2 + 1
	var frames [][]float64
	for start := 0; start+nfft <= len(samples); start += hop {
		windowed := make([]float64, nfft)
		for i := 0; i < nfft; i++ {
			windowed[i] = samples[start+i] * window[i]
		}
		spectrum := fft.FFTReal(windowed)
		mag := make([]float64, fBins)
		for f := 0; f < fBins; f++ {
			mag[f] = math.Log1p(cmplx.Abs(spectrum[f]))
		}
		frames = append(frames, mag)
	}
	return frames
}

// ToSpectrogram turns a decoded PCM stream into a magnitude spectrogram
// per the audio front end contract (§4.A): mono-mix, resample to
// p.SampleRate, peak-normalize, then a Hann-windowed magnitude STFT.
//
// Empty input, all-silence input, or fewer samples than p.NFFT after
// resampling yields an empty Spectrogram (zero frames) and a nil error —
// downstream stages treat this as "no fingerprint", not a failure.
func ToSpectrogram(samples []float32, channels, sourceRate int, p Params) (*Spectrogram, error) {
	if len(samples) == 0 {
		return &Spectrogram{Bins: p.FBins()}, nil
	}

	mono := monoMix(samples, channels)
	if sourceRate != p.SampleRate && sourceRate > 0 {
		mono = resampleLinear(mono, sourceRate, p.SampleRate)
	}

	if normalizePeak(mono) == 0 {
		return &Spectrogram{Bins: p.FBins()}, nil
	}
	if len(mono) < p.NFFT {
		return &Spectrogram{Bins: p.FBins()}, nil
	}

	frames := magnitudeSTFT(mono, p.NFFT, p.Hop)
	return &Spectrogram{Frames: frames, Bins: p.FBins()}, nil
}
