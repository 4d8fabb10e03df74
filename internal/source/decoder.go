package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// decoder yields mono samples in [-1,1], mixed down from however many
// channels the source file has.
type decoder interface {
	// ReadMono fills dst and reports how many samples were written.
	ReadMono(dst []float64) (int, error)
	SampleRate() int
}

var supportedExts = []string{".wav", ".mp3", ".ogg", ".flac"}

// IsSupportedExt reports whether the extension (with leading dot,
// lower-cased) names a readable format.
func IsSupportedExt(ext string) bool {
	for _, e := range supportedExts {
		if ext == e {
			return true
		}
	}
	return false
}

// SupportedExtsList returns the formats for error messages.
func SupportedExtsList() string {
	return strings.Join(supportedExts, ", ")
}

// newDecoder detects format by file extension.
func newDecoder(f *os.File) (decoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", ext, SupportedExtsList())
	}
}

// --- MP3 ---

// go-mp3 emits 16-bit little-endian stereo regardless of the source.
type mp3Decoder struct {
	dec *mp3.Decoder
	buf []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) ReadMono(dst []float64) (int, error) {
	const frameSize = 4 // 2 channels x 2 bytes
	need := len(dst) * frameSize
	if cap(d.buf) < need {
		d.buf = make([]byte, need)
	}
	n, err := io.ReadFull(d.dec, d.buf[:need])
	frames := n / frameSize
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(d.buf[i*frameSize:]))
		r := int16(binary.LittleEndian.Uint16(d.buf[i*frameSize+2:]))
		dst[i] = (float64(l) + float64(r)) / 2 / 32768.0
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if frames > 0 && err == io.EOF {
		err = nil
	}
	return frames, err
}

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }

// --- WAV ---

type wavDecoder struct {
	file       *os.File
	sampleRate int
	channels   int
	bitDepth   int
	raw        []byte
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	// FwdToPCM positions the reader at the start of PCM data.
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	return &wavDecoder{
		file:       f,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
	}, nil
}

func (d *wavDecoder) ReadMono(dst []float64) (int, error) {
	bytesPerSample := d.bitDepth / 8
	frameSize := d.channels * bytesPerSample
	need := len(dst) * frameSize
	if cap(d.raw) < need {
		d.raw = make([]byte, need)
	}
	n, err := io.ReadFull(d.file, d.raw[:need])
	frames := n / frameSize
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < d.channels; ch++ {
			off := i*frameSize + ch*bytesPerSample
			sum += pcmSample(d.raw[off:], d.bitDepth)
		}
		dst[i] = sum / float64(d.channels)
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if frames > 0 && err == io.EOF {
		err = nil
	}
	return frames, err
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }

// pcmSample converts one little-endian PCM sample to [-1,1].
func pcmSample(raw []byte, bitDepth int) float64 {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		return (float64(raw[0]) - 128) / 128
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(raw))) / 32768
	case 24:
		s := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16
		if s&0x800000 != 0 {
			s |= ^int32(0xFFFFFF) // sign extend
		}
		return float64(s) / 8388608
	case 32:
		return float64(int32(binary.LittleEndian.Uint32(raw))) / 2147483648
	default:
		return 0
	}
}

// --- FLAC ---

type flacDecoder struct {
	stream     *flac.Stream
	sampleRate int
	channels   int
	bps        int
	pending    []float64
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bps:        int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) ReadMono(dst []float64) (int, error) {
	written := 0
	for written < len(dst) {
		if len(d.pending) > 0 {
			n := copy(dst[written:], d.pending)
			d.pending = d.pending[n:]
			written += n
			continue
		}
		frame, err := d.stream.ParseNext()
		if err != nil {
			if written > 0 {
				return written, nil
			}
			return 0, err
		}
		nSamples := int(frame.Subframes[0].NSamples)
		fullScale := float64(int64(1) << (d.bps - 1))
		d.pending = make([]float64, nSamples)
		for i := 0; i < nSamples; i++ {
			var sum float64
			for ch := 0; ch < d.channels; ch++ {
				sum += float64(frame.Subframes[ch].Samples[i]) / fullScale
			}
			d.pending[i] = sum / float64(d.channels)
		}
	}
	return written, nil
}

func (d *flacDecoder) SampleRate() int { return d.sampleRate }

// --- OGG Vorbis ---

type oggDecoder struct {
	reader   *oggvorbis.Reader
	channels int
	raw      []float32
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{reader: reader, channels: reader.Channels()}, nil
}

func (d *oggDecoder) ReadMono(dst []float64) (int, error) {
	need := len(dst) * d.channels
	if cap(d.raw) < need {
		d.raw = make([]float32, need)
	}
	n, err := d.reader.Read(d.raw[:need])
	frames := n / d.channels
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < d.channels; ch++ {
			sum += float64(d.raw[i*d.channels+ch])
		}
		dst[i] = sum / float64(d.channels)
	}
	if frames > 0 && err == io.EOF {
		err = nil
	}
	return frames, err
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }
