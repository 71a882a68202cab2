package fingerprint

import "testing"

func TestGenerateHashesFewerThanTwoPeaks(t *testing.T) {
	if lm := GenerateHashes(nil, DefaultParams()); lm != nil {
		t.Error("expected no landmarks for zero peaks")
	}
	if lm := GenerateHashes([]Peak{{TimeIdx: 1, FreqIdx: 2, Amplitude: 10}}, DefaultParams()); lm != nil {
		t.Error("expected no landmarks for a single peak")
	}
}

func TestGenerateHashesFanOut(t *testing.T) {
	p := DefaultParams()
	p.FanOut = 2
	p.DtMax = 200

	peaks := []Peak{
		{TimeIdx: 0, FreqIdx: 10, Amplitude: 20},
		{TimeIdx: 1, FreqIdx: 20, Amplitude: 20},
		{TimeIdx: 2, FreqIdx: 30, Amplitude: 20},
		{TimeIdx: 3, FreqIdx: 40, Amplitude: 20},
	}

	landmarks := GenerateHashes(peaks, p)
	anchorCount := make(map[int]int)
	for _, lm := range landmarks {
		anchorCount[lm.AnchorIdx]++
	}
	for anchor, count := range anchorCount {
		if count > p.FanOut {
			t.Errorf("anchor at t=%d produced %d pairs, exceeds fan-out %d", anchor, count, p.FanOut)
		}
	}
}

func TestGenerateHashesRespectsDtMax(t *testing.T) {
	p := DefaultParams()
	p.DtMax = 5
	p.FanOut = 10

	peaks := []Peak{
		{TimeIdx: 0, FreqIdx: 1, Amplitude: 20},
		{TimeIdx: 100, FreqIdx: 2, Amplitude: 20},
	}

	if lm := GenerateHashes(peaks, p); len(lm) != 0 {
		t.Errorf("expected no landmarks beyond dt_max, got %d", len(lm))
	}
}

// TestGenerateHashesAnchorTime checks that anchor_time = t1, the earlier peak.
func TestGenerateHashesAnchorTime(t *testing.T) {
	p := DefaultParams()
	peaks := []Peak{
		{TimeIdx: 5, FreqIdx: 1, Amplitude: 20},
		{TimeIdx: 9, FreqIdx: 2, Amplitude: 20},
	}
	landmarks := GenerateHashes(peaks, p)
	if len(landmarks) != 1 {
		t.Fatalf("expected exactly 1 landmark, got %d", len(landmarks))
	}
	if landmarks[0].AnchorIdx != 5 {
		t.Errorf("expected anchor_time=5, got %d", landmarks[0].AnchorIdx)
	}
}

// TestGenerateHashesDeterminism is testable property 3.
func TestGenerateHashesDeterminism(t *testing.T) {
	p := DefaultParams()
	samples := genSine(523, p.SampleRate, p.SampleRate*2)
	spec, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatal(err)
	}
	peaks := ExtractPeaks(spec, p)

	a := GenerateHashes(peaks, p)
	b := GenerateHashes(peaks, p)
	if len(a) != len(b) {
		t.Fatalf("landmark count differs across runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("landmark %d differs across runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestSilenceYieldsEmptyHashes is testable property 5.
func TestSilenceYieldsEmptyHashes(t *testing.T) {
	p := DefaultParams()
	samples := make([]float32, p.SampleRate*3)
	spec, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatal(err)
	}
	peaks := ExtractPeaks(spec, p)
	if len(peaks) != 0 {
		t.Fatalf("expected no peaks from silence, got %d", len(peaks))
	}
	if lm := GenerateHashes(peaks, p); len(lm) != 0 {
		t.Fatalf("expected no landmarks from silence, got %d", len(lm))
	}
}
