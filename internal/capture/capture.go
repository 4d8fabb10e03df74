// Package capture opens live audio input sessions through PortAudio.
// A Session owns one stream; the render driver holds the only reference
// and releases it before opening another, so at most one session is
// active at a time.
package capture

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Source selects which input a session captures.
type Source int

const (
	// Microphone captures the default input device.
	Microphone Source = iota
	// SystemAudio captures a loopback/monitor device, i.e. whatever the
	// machine is currently playing.
	SystemAudio
)

func (s Source) String() string {
	switch s {
	case Microphone:
		return "microphone"
	case SystemAudio:
		return "system audio"
	default:
		return "unknown source"
	}
}

var (
	// ErrNoInputDevice means the host has no usable input device.
	ErrNoInputDevice = errors.New("no audio input device available")
	// ErrNoMonitorDevice means no loopback/monitor input was found for
	// system-audio capture.
	ErrNoMonitorDevice = errors.New("no loopback or monitor device found (system audio capture unsupported on this host)")
)

const framesPerBuffer = 512

// maxChannels caps how many input channels are opened; extra channels are
// irrelevant since everything is mixed to mono anyway.
const maxChannels = 2

// Session is a live capture stream feeding mono samples into a sink.
type Session struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	closed   bool
	channels int
	mono     []float64
	sink     func([]float64)
}

// Open acquires the device for src and starts streaming. Mono samples in
// [-1,1] are pushed into sink from the audio callback goroutine. On any
// failure, partially acquired resources are released and a descriptive
// error is returned; the caller stays idle.
func Open(src Source, sink func([]float64)) (*Session, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing audio host: %w", err)
	}

	dev, err := lookupDevice(src)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	if params.Input.Channels > maxChannels {
		params.Input.Channels = maxChannels
	}
	params.FramesPerBuffer = framesPerBuffer

	s := &Session{
		channels: params.Input.Channels,
		mono:     make([]float64, framesPerBuffer),
		sink:     sink,
	}
	stream, err := portaudio.OpenStream(params, s.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("opening %s stream (%s): %w", src, dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("starting %s stream (%s): %w", src, dev.Name, err)
	}

	s.stream = stream
	return s, nil
}

// callback mixes the interleaved input down to mono and forwards it.
func (s *Session) callback(in []float32) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	channels := s.channels
	if channels < 1 {
		channels = 1
	}
	frames := len(in) / channels
	if frames > len(s.mono) {
		s.mono = make([]float64, frames)
	}
	mono := s.mono[:frames]
	for f := 0; f < frames; f++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(in[f*channels+ch])
		}
		mono[f] = sum / float64(channels)
	}
	sink := s.sink
	s.mu.Unlock()

	sink(mono)
}

// Close stops the stream and releases the audio host. Safe to call more
// than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stream := s.stream
	s.mu.Unlock()

	var firstErr error
	if err := stream.Stop(); err != nil {
		firstErr = fmt.Errorf("stopping capture stream: %w", err)
	}
	if err := stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing capture stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("releasing audio host: %w", err)
	}
	return firstErr
}

func lookupDevice(src Source) (*portaudio.DeviceInfo, error) {
	switch src {
	case SystemAudio:
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("listing audio devices: %w", err)
		}
		for _, dev := range devices {
			if dev.MaxInputChannels > 0 && isMonitorName(dev.Name) {
				return dev, nil
			}
		}
		return nil, ErrNoMonitorDevice
	default:
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoInputDevice, err)
		}
		if dev == nil || dev.MaxInputChannels < 1 {
			return nil, ErrNoInputDevice
		}
		return dev, nil
	}
}

// isMonitorName reports whether a device name looks like a system
// loopback input. Naming varies per host API, so this is a heuristic.
func isMonitorName(name string) bool {
	n := strings.ToLower(name)
	for _, marker := range []string{"monitor", "loopback", "stereo mix", "what u hear", "blackhole", "soundflower"} {
		if strings.Contains(n, marker) {
			return true
		}
	}
	return false
}
