// Package source feeds decoded audio files into the analyser at real-time
// rate, so local files can be visualized without any audio output.
package source

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// chunkInterval is how often the pump pushes one chunk of samples.
const chunkInterval = 20 * time.Millisecond

// Pump streams a file's samples into a sink, paced to the file's sample
// rate. It satisfies the same session shape as a live capture: Close
// releases everything, Done signals natural end of the file.
type Pump struct {
	file *os.File
	dec  decoder
	meta Metadata

	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
	started   bool
}

// Open prepares a pump for the given audio file.
func Open(path string) (*Pump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Pump{
		file: f,
		dec:  dec,
		meta: ReadMetadata(path),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}, nil
}

// Meta returns title/artist for the UI header.
func (p *Pump) Meta() Metadata { return p.meta }

// SampleRate returns the source file's sample rate.
func (p *Pump) SampleRate() int { return p.dec.SampleRate() }

// Start begins pushing mono samples into sink from a pump goroutine.
// Must be called at most once.
func (p *Pump) Start(sink func([]float64)) {
	if p.started {
		return
	}
	p.started = true
	go p.run(sink)
}

func (p *Pump) run(sink func([]float64)) {
	defer close(p.done)

	chunkSize := p.dec.SampleRate() / int(time.Second/chunkInterval)
	if chunkSize < 1 {
		chunkSize = 1
	}
	chunk := make([]float64, chunkSize)

	ticker := time.NewTicker(chunkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			n, err := p.dec.ReadMono(chunk)
			if n > 0 {
				sink(chunk[:n])
			}
			if err != nil {
				return
			}
		}
	}
}

// Done is closed when the file ends or the pump is closed.
func (p *Pump) Done() <-chan struct{} { return p.done }

// Close stops the pump goroutine and closes the file. Safe to call more
// than once.
func (p *Pump) Close() error {
	p.stopOnce.Do(func() { close(p.stop) })
	if p.started {
		<-p.done
	}
	p.closeOnce.Do(func() { p.closeErr = p.file.Close() })
	return p.closeErr
}
