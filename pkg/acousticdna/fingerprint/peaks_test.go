package fingerprint

import "testing"

func TestExtractPeaksEmptySpectrogram(t *testing.T) {
	if peaks := ExtractPeaks(nil, DefaultParams()); peaks != nil {
		t.Error("expected no peaks from a nil spectrogram")
	}
	if peaks := ExtractPeaks(&Spectrogram{}, DefaultParams()); peaks != nil {
		t.Error("expected no peaks from an empty spectrogram")
	}
}

func TestExtractPeaksOrdering(t *testing.T) {
	p := DefaultParams()
	samples := genSine(440, p.SampleRate, p.SampleRate*3)
	spec, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatal(err)
	}

	peaks := ExtractPeaks(spec, p)
	if len(peaks) == 0 {
		t.Fatal("expected at least one peak from a pure tone")
	}

	for i := 1; i < len(peaks); i++ {
		if peaks[i].TimeIdx < peaks[i-1].TimeIdx {
			t.Fatal("peaks must be sorted by time first")
		}
		if peaks[i].TimeIdx == peaks[i-1].TimeIdx && peaks[i].FreqIdx < peaks[i-1].FreqIdx {
			t.Fatal("peaks with equal time must be sorted by frequency")
		}
	}

	seen := make(map[[2]int]bool)
	for _, pk := range peaks {
		key := [2]int{pk.TimeIdx, pk.FreqIdx}
		if seen[key] {
			t.Fatalf("duplicate peak at (t=%d,f=%d)", pk.TimeIdx, pk.FreqIdx)
		}
		seen[key] = true
	}
}

func TestExtractPeaksRespectsAmplitudeFloor(t *testing.T) {
	p := DefaultParams()
	p.MinAmplitude = 1e9 // impossibly high floor
	samples := genSine(440, p.SampleRate, p.SampleRate)
	spec, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatal(err)
	}
	if peaks := ExtractPeaks(spec, p); len(peaks) != 0 {
		t.Errorf("expected no peaks above an impossibly high floor, got %d", len(peaks))
	}
}

func TestExtractPeaksMaxPeaksPerTrack(t *testing.T) {
	p := DefaultParams()
	p.MaxPeaksPerTrack = 3
	samples := genSine(440, p.SampleRate, p.SampleRate*5)
	spec, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatal(err)
	}
	peaks := ExtractPeaks(spec, p)
	if len(peaks) > 3 {
		t.Errorf("expected at most 3 peaks, got %d", len(peaks))
	}
}
