package audio_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/orato-ai/orato/pkg/audio"
)

// writeWAV encodes mono int16 PCM to a temp WAV file and returns its path.
func writeWAV(t *testing.T, rate int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestLoadWAVRoundTrip(t *testing.T) {
	t.Parallel()

	data := make([]int, 400)
	for i := range data {
		data[i] = 8192 // 0.25 at 16-bit
	}
	path := writeWAV(t, audio.AnalysisRate, data)

	samples, rate, err := audio.LoadWAV(path)
	if err != nil {
		t.Fatalf("LoadWAV: %v", err)
	}
	if rate != audio.AnalysisRate {
		t.Fatalf("rate = %d, want %d", rate, audio.AnalysisRate)
	}
	if len(samples) != len(data) {
		t.Fatalf("got %d samples, want %d", len(samples), len(data))
	}
	for i, s := range samples {
		if math.Abs(float64(s)-0.25) > 1e-3 {
			t.Fatalf("sample %d = %v, want ~0.25", i, s)
		}
	}
}

func TestLoadForAnalysisResamples(t *testing.T) {
	t.Parallel()

	// 8 kHz source should come back doubled in length at the analysis rate.
	data := make([]int, 800)
	path := writeWAV(t, 8000, data)

	samples, err := audio.LoadForAnalysis(path)
	if err != nil {
		t.Fatalf("LoadForAnalysis: %v", err)
	}
	if len(samples) != 1600 {
		t.Fatalf("got %d samples, want 1600", len(samples))
	}
}

func TestLoadWAVErrors(t *testing.T) {
	t.Parallel()

	if _, _, err := audio.LoadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "not-audio.wav")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := audio.LoadWAV(path); err == nil {
		t.Fatal("expected error for non-WAV content")
	}
}

func TestResampleMonoIdentity(t *testing.T) {
	t.Parallel()

	in := []float32{0, 0.5, 1}
	out := audio.ResampleMono(in, 16000, 16000)
	if len(out) != len(in) {
		t.Fatalf("got %d samples, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d changed: %v", i, out[i])
		}
	}
}

func TestResampleMonoDownsample(t *testing.T) {
	t.Parallel()

	// A linear ramp survives 2:1 downsampling as every other value.
	in := make([]float32, 8)
	for i := range in {
		in[i] = float32(i) / 8
	}
	out := audio.ResampleMono(in, 16000, 8000)
	if len(out) != 4 {
		t.Fatalf("got %d samples, want 4", len(out))
	}
	for i, s := range out {
		want := float32(2*i) / 8
		if math.Abs(float64(s-want)) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v", i, s, want)
		}
	}
}

func TestResampleMonoInterpolates(t *testing.T) {
	t.Parallel()

	out := audio.ResampleMono([]float32{0, 1}, 8000, 16000)
	if len(out) != 4 {
		t.Fatalf("got %d samples, want 4", len(out))
	}
	if math.Abs(float64(out[1]-0.5)) > 1e-6 {
		t.Fatalf("midpoint = %v, want 0.5", out[1])
	}
}

func TestResampleMonoDegenerateInput(t *testing.T) {
	t.Parallel()

	if out := audio.ResampleMono(nil, 16000, 8000); out != nil {
		t.Fatalf("nil input should stay nil, got %v", out)
	}
	one := []float32{0.3}
	if out := audio.ResampleMono(one, 16000, 8000); len(out) != 1 || out[0] != 0.3 {
		t.Fatalf("single sample should pass through, got %v", out)
	}
}
