package fingerprint

import "sort"

// Peak is a local maximum of the spectrogram: (t, f, a) with a = S[f,t].
type Peak struct {
	TimeIdx   int
	FreqIdx   int
	Amplitude float64
}

// ExtractPeaks finds robust spectral peaks per the constellation-extractor
// contract (§4.B): a bin qualifies iff it equals the morphological max of
// a rectangular neighborhood of radius p.PeakRadius in both axes, is at
// least p.MinAmplitude, and is strictly positive. Plateau ties (several
// bins sharing the neighborhood max) are broken deterministically, keeping
// only the earliest-time, then lowest-frequency member of each connected
// equal-max region. Peaks are returned in time-then-frequency order.
func ExtractPeaks(s *Spectrogram, p Params) []Peak {
	if s == nil || s.NumFrames() == 0 || s.Bins == 0 {
		return nil
	}

	nFrames := s.NumFrames()
	nBins := s.Bins
	r := p.PeakRadius

	type candidate struct {
		t, f int
		a    float64
	}
	var candidates []candidate

	for t := 0; t < nFrames; t++ {
		for f := 0; f < nBins; f++ {
			a := s.At(f, t)
			if a <= 0 || a < p.MinAmplitude {
				continue
			}

			localMax := a
			isMax := true
			for dt := -r; dt <= r && isMax; dt++ {
				tt := t + dt
				if tt < 0 || tt >= nFrames {
					continue
				}
				for df := -r; df <= r; df++ {
					ff := f + df
					if ff < 0 || ff >= nBins {
						continue
					}
					if dt == 0 && df == 0 {
						continue
					}
					if v := s.At(ff, tt); v > localMax {
						isMax = false
						break
					}
				}
			}
			if !isMax {
				continue
			}
			candidates = append(candidates, candidate{t, f, a})
		}
	}

	// Candidates are already produced in time-then-frequency order by the
	// scan above. Deduplicate connected equal-max plateaus: an already
	// accepted candidate within radius R sharing the same amplitude wins,
	// since it was discovered earlier in (t,f) order.
	var accepted []candidate
	for _, c := range candidates {
		dup := false
		for _, a := range accepted {
			if c.a == a.a && abs(c.t-a.t) <= r && abs(c.f-a.f) <= r {
				dup = true
				break
			}
		}
		if !dup {
			accepted = append(accepted, c)
		}
	}

	peaks := make([]Peak, 0, len(accepted))
	for _, c := range accepted {
		peaks = append(peaks, Peak{TimeIdx: c.t, FreqIdx: c.f, Amplitude: c.a})
	}

	if p.MaxPeaksPerTrack > 0 && len(peaks) > p.MaxPeaksPerTrack {
		sort.Slice(peaks, func(i, j int) bool { return peaks[i].Amplitude > peaks[j].Amplitude })
		peaks = peaks[:p.MaxPeaksPerTrack]
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].TimeIdx == peaks[j].TimeIdx {
			return peaks[i].FreqIdx < peaks[j].FreqIdx
		}
		return peaks[i].TimeIdx < peaks[j].TimeIdx
	})

	return peaks
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
