package source

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV creates a 16-bit PCM WAV file with the given interleaved data.
func writeWAV(t *testing.T, rate, channels int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWAVDecoderMono(t *testing.T) {
	path := writeWAV(t, 8000, 1, []int{16384, -16384, 32767, 0})
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec, err := newDecoder(f)
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate() != 8000 {
		t.Fatalf("sample rate = %d, want 8000", dec.SampleRate())
	}

	out := make([]float64, 4)
	n, err := dec.ReadMono(out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("read %d samples, want 4", n)
	}
	want := []float64{0.5, -0.5, 32767.0 / 32768.0, 0}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Errorf("sample %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestWAVDecoderStereoMixdown(t *testing.T) {
	// L and R cancel in the first frame, reinforce in the second.
	path := writeWAV(t, 8000, 2, []int{16384, -16384, 16384, 16384})
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec, err := newDecoder(f)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]float64, 2)
	if _, err := dec.ReadMono(out); err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[0]) > 1e-9 {
		t.Errorf("cancelling frame = %v, want 0", out[0])
	}
	if math.Abs(out[1]-0.5) > 1e-9 {
		t.Errorf("reinforcing frame = %v, want 0.5", out[1])
	}
}

func TestPCMSampleBitDepths(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		bitDepth int
		want     float64
	}{
		{"8-bit midpoint", []byte{128}, 8, 0},
		{"8-bit max", []byte{255}, 8, 127.0 / 128.0},
		{"16-bit half", []byte{0x00, 0x40}, 16, 0.5},
		{"16-bit negative", []byte{0x00, 0xC0}, 16, -0.5},
		{"24-bit negative one", []byte{0x00, 0x00, 0x80}, 24, -1},
		{"32-bit half", []byte{0x00, 0x00, 0x00, 0x40}, 32, 0.5},
	}
	for _, tt := range tests {
		if got := pcmSample(tt.raw, tt.bitDepth); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewDecoderUnsupportedExt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.aiff")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := newDecoder(f); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestIsSupportedExt(t *testing.T) {
	for _, ext := range []string{".wav", ".mp3", ".ogg", ".flac"} {
		if !IsSupportedExt(ext) {
			t.Errorf("expected %s to be supported", ext)
		}
	}
	if IsSupportedExt(".aac") {
		t.Error(".aac should not be supported")
	}
}

func TestReadMetadataFallsBackToFilename(t *testing.T) {
	m := ReadMetadata("/music/Morning Dew.wav")
	if m.Title != "Morning Dew" {
		t.Fatalf("title = %q, want filename without extension", m.Title)
	}
}

func TestPumpStreamsAndSignalsDone(t *testing.T) {
	data := make([]int, 800)
	for i := range data {
		data[i] = 1000
	}
	path := writeWAV(t, 8000, 1, data)

	p, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	var total int
	got := make(chan struct{}, 1)
	p.Start(func(samples []float64) {
		total += len(samples)
		select {
		case got <- struct{}{}:
		default:
		}
	})

	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("pump did not finish the file")
	}
	if total != len(data) {
		t.Fatalf("streamed %d samples, want %d", total, len(data))
	}
}

func TestPumpCloseIsIdempotent(t *testing.T) {
	path := writeWAV(t, 8000, 1, make([]int, 8000))
	p, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	p.Start(func([]float64) {})
	if err := p.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
