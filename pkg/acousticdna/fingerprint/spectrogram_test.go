package fingerprint

import (
	"math"
	"testing"
)

func TestHannWindow(t *testing.T) {
	w := hann(256)
	if len(w) != 256 {
		t.Fatalf("expected length 256, got %d", len(w))
	}
	if w[0] > 0.01 {
		t.Errorf("Hann window should be near zero at the edges, got %f", w[0])
	}
	mid := w[len(w)/2]
	if mid < 0.9 {
		t.Errorf("Hann window should peak near 1.0 at the center, got %f", mid)
	}
}

func genSine(freq float64, sampleRate, n int) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return out
}

func TestToSpectrogramShape(t *testing.T) {
	p := DefaultParams()
	samples := genSine(440, p.SampleRate, p.SampleRate*2)

	spec, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatalf("ToSpectrogram failed: %v", err)
	}
	if spec.NumFrames() == 0 {
		t.Fatal("expected non-empty spectrogram for a 2s sine tone")
	}
	if spec.Bins != p.FBins() {
		t.Errorf("expected %d bins, got %d", p.FBins(), spec.Bins)
	}
}

func TestToSpectrogramEmptyInput(t *testing.T) {
	p := DefaultParams()
	spec, err := ToSpectrogram(nil, 1, p.SampleRate, p)
	if err != nil {
		t.Fatalf("expected no error on empty input, got %v", err)
	}
	if spec.NumFrames() != 0 {
		t.Error("expected zero frames for empty input")
	}
}

func TestToSpectrogramSilence(t *testing.T) {
	p := DefaultParams()
	samples := make([]float32, p.SampleRate*2)
	spec, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatalf("expected no error on silence, got %v", err)
	}
	if spec.NumFrames() != 0 {
		t.Error("expected zero frames for all-silence input")
	}
}

func TestToSpectrogramShorterThanWindow(t *testing.T) {
	p := DefaultParams()
	samples := genSine(440, p.SampleRate, p.NFFT/2)
	spec, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if spec.NumFrames() != 0 {
		t.Error("expected zero frames for input shorter than one STFT window")
	}
}

func TestToSpectrogramMonoMixStereo(t *testing.T) {
	p := DefaultParams()
	mono := genSine(440, p.SampleRate, p.SampleRate)
	stereo := make([]float32, len(mono)*2)
	for i, v := range mono {
		stereo[2*i] = v
		stereo[2*i+1] = v
	}

	specMono, err := ToSpectrogram(mono, 1, p.SampleRate, p)
	if err != nil {
		t.Fatalf("mono spectrogram failed: %v", err)
	}
	specStereo, err := ToSpectrogram(stereo, 2, p.SampleRate, p)
	if err != nil {
		t.Fatalf("stereo spectrogram failed: %v", err)
	}
	if specMono.NumFrames() != specStereo.NumFrames() {
		t.Errorf("mono-mixed dual-channel identical signal should match mono frame count: %d vs %d",
			specStereo.NumFrames(), specMono.NumFrames())
	}
}

// TestToSpectrogramDeterminism is testable property 3: hashes(peaks(to_spectrogram(pcm)))
// is a pure function of pcm and the configuration.
func TestToSpectrogramDeterminism(t *testing.T) {
	p := DefaultParams()
	samples := genSine(880, p.SampleRate, p.SampleRate)

	a, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ToSpectrogram(samples, 1, p.SampleRate, p)
	if err != nil {
		t.Fatal(err)
	}
	if a.NumFrames() != b.NumFrames() {
		t.Fatalf("frame count differs across runs: %d vs %d", a.NumFrames(), b.NumFrames())
	}
	for t_ := range a.Frames {
		for f := range a.Frames[t_] {
			if a.Frames[t_][f] != b.Frames[t_][f] {
				t.Fatalf("spectrogram not bit-identical across runs at (f=%d,t=%d)", f, t_)
			}
		}
	}
}
