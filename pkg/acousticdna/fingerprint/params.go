// Package fingerprint implements the audio front end, the constellation
// peak extractor, and the combinatorial hash generator: components A, B
// and C of the fingerprint-and-match engine. Index and query callers must
// share a single Params value — a mismatch silently degrades recall.
package fingerprint

// Params is the immutable configuration record shared by the front end,
// peak extractor and hash generator. The same values must be used at
// index and query time; changing any of SampleRate, NFFT, Hop, PeakRadius,
// MinAmplitude, FanOut or DtMax invalidates an on-disk index.
type Params struct {
	// SampleRate is the canonical rate (Hz) the front end resamples to.
	SampleRate int
	// NFFT is the STFT window length in samples.
	NFFT int
	// Hop is the STFT hop size in samples.
	Hop int
	// PeakRadius is the peak neighborhood radius (both axes, in bins/frames).
	PeakRadius int
	// MinAmplitude is the peak amplitude floor, in the compressed-magnitude scale.
	MinAmplitude float64
	// FanOut is the maximum number of target peaks paired per anchor.
	FanOut int
	// DtMax is the maximum anchor-to-target delta-time, in frames.
	DtMax int
	// MaxPostingsPerHashQuery bounds postings returned to the matcher per
	// hash, guarding against a pathological "hot hash".
	MaxPostingsPerHashQuery int
	// MaxPeaksPerTrack optionally caps the peak count kept per track
	// (strongest-by-amplitude survive). Zero means unlimited. This is an
	// engine-level memory knob, not one of the values that must match
	// between index and query builds.
	MaxPeaksPerTrack int
}

// DefaultParams returns the spec's reference parameter set.
func DefaultParams() Params {
	return Params{
		SampleRate:              11025,
		NFFT:                    2048,
		Hop:                     512,
		PeakRadius:              20,
		MinAmplitude:            10.0,
		FanOut:                  5,
		DtMax:                   200,
		MaxPostingsPerHashQuery: 5000,
	}
}

// FBins returns F_BINS = NFFT/2 + 1 for these params.
func (p Params) FBins() int {
	return p.NFFT/2 + 1
}
