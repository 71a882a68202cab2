package fingerprint

// Landmark is a (hash, anchor_time) pair: the output of the combinatorial
// hasher (§4.C).
type Landmark struct {
	Hash      LandmarkHash
	AnchorIdx int
}

// GenerateHashes pairs each anchor peak with up to p.FanOut subsequent
// peaks within p.DtMax frames, emitting one Landmark per pair. peaks must
// already be in time-then-frequency order (as returned by ExtractPeaks);
// the generator does not sort and does not deduplicate — a track may
// legitimately re-emit the same landmark at the same or different anchor
// times, and the matcher tolerates this.
func GenerateHashes(peaks []Peak, p Params) []Landmark {
	if len(peaks) < 2 {
		return nil
	}

	var out []Landmark
	for i, anchor := range peaks {
		paired := 0
		for j := i + 1; j < len(peaks) && paired < p.FanOut; j++ {
			target := peaks[j]
			dt := target.TimeIdx - anchor.TimeIdx
			if dt <= 0 {
				continue
			}
			if dt > p.DtMax {
				break
			}
			h, ok := PackHash(anchor.FreqIdx, target.FreqIdx, dt)
			if !ok {
				continue
			}
			out = append(out, Landmark{Hash: h, AnchorIdx: anchor.TimeIdx})
			paired++
		}
	}
	return out
}
