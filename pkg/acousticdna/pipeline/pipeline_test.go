package pipeline

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/index"
)

func sineSamples(freq float64, sampleRate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return out
}

func fakeDecoder(fail map[string]bool) Decoder {
	return func(path string) ([]float32, int, int, error) {
		if fail[path] {
			return nil, 0, 0, errors.New("simulated decode failure")
		}
		return sineSamples(440, 11025, 11025*2), 1, 11025, nil
	}
}

func staticNamer(prefix string) TrackNamer {
	i := 0
	var mu sync.Mutex
	return func(path string) (string, string, string) {
		mu.Lock()
		defer mu.Unlock()
		i++
		return prefix + string(rune('0'+i)), path, ""
	}
}

func TestIndexPathsCommitsOnePerFile(t *testing.T) {
	idx := index.NewMemIndex()
	paths := []string{"a.wav", "b.wav", "c.wav"}

	result, err := IndexPaths(context.Background(), idx, paths, 2, fakeDecoder(nil), staticNamer("t"), fingerprint.DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Succeeded) != 3 {
		t.Fatalf("expected 3 successes, got %d (%v)", len(result.Succeeded), result.Failed)
	}
	if len(result.Failed) != 0 {
		t.Fatalf("expected no failures, got %v", result.Failed)
	}

	tracks, err := idx.ListTracks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks committed, got %d", len(tracks))
	}
}

func TestIndexPathsReportsFailuresWithoutAbortingOthers(t *testing.T) {
	idx := index.NewMemIndex()
	paths := []string{"good1.wav", "bad.wav", "good2.wav"}

	result, err := IndexPaths(context.Background(), idx, paths, 2, fakeDecoder(map[string]bool{"bad.wav": true}), staticNamer("t"), fingerprint.DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Succeeded) != 2 {
		t.Fatalf("expected 2 successes, got %d", len(result.Succeeded))
	}
	if len(result.Failed) != 1 || result.Failed[0].Path != "bad.wav" {
		t.Fatalf("expected bad.wav to be the sole failure, got %v", result.Failed)
	}
}

func TestIndexPathsProgressCallbackFiresPerFile(t *testing.T) {
	idx := index.NewMemIndex()
	paths := []string{"a.wav", "b.wav", "c.wav", "d.wav"}

	var mu sync.Mutex
	calls := 0
	progress := func(done, total int, last FileResult) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if total != len(paths) {
			t.Errorf("expected total=%d, got %d", len(paths), total)
		}
	}

	_, err := IndexPaths(context.Background(), idx, paths, 3, fakeDecoder(nil), staticNamer("t"), fingerprint.DefaultParams(), progress)
	if err != nil {
		t.Fatal(err)
	}
	if calls != len(paths) {
		t.Fatalf("expected %d progress calls, got %d", len(paths), calls)
	}
}

func TestIndexPathsCancellationStopsNewWork(t *testing.T) {
	idx := index.NewMemIndex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := []string{"a.wav", "b.wav", "c.wav"}
	result, err := IndexPaths(ctx, idx, paths, 1, fakeDecoder(nil), staticNamer("t"), fingerprint.DefaultParams(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Succeeded)+len(result.Failed) > 0 {
		t.Fatalf("expected no files to start after cancellation, got %d", len(result.Succeeded)+len(result.Failed))
	}
}

func TestResultSummary(t *testing.T) {
	r := Result{
		Succeeded: []FileResult{{}, {}},
		Failed:    []FileResult{{}},
	}
	if got := r.Summary(); got != "2 of 3 files indexed" {
		t.Fatalf("unexpected summary: %q", got)
	}
}
