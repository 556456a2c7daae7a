// ABOUTME: Audio sources for the development feed
// ABOUTME: Decodes MP3, FLAC, WAV and Ogg Vorbis files to mono 16-bit PCM
package feed

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/pdugic/audio-analyzer/pkg/audio"
	"github.com/pdugic/audio-analyzer/pkg/audio/resample"
)

// Source provides mono 16-bit PCM. Read may return n > 0 together with io.EOF.
type Source interface {
	Read(samples []int16) (int, error)
	SampleRate() int
	Title() string
	Close() error
}

// Open creates a source from a file path. An empty path gives a test tone.
// Every source is delivered at audio.DefaultSampleRate, the rate players
// interpret raw PCM at.
func Open(path string, toneDuration time.Duration) (Source, error) {
	if path == "" {
		return NewToneSource(audio.DefaultSampleRate, 440, toneDuration), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", path)
	}

	var (
		src Source
		err error
	)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		src, err = NewMP3Source(path)
	case ".flac":
		src, err = NewFLACSource(path)
	case ".wav":
		src, err = NewWAVSource(path)
	case ".ogg", ".oga":
		src, err = NewOggSource(path)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac, .wav, .ogg)", ext)
	}
	if err != nil {
		return nil, err
	}

	return WithSampleRate(src, audio.DefaultSampleRate), nil
}

// RateSource converts another source to a fixed sample rate
type RateSource struct {
	Source
	rate   int
	stream *resample.Stream
	in     []int16
	inF    []float32
	out    []float32
	eof    bool
}

// WithSampleRate returns src unchanged when it already runs at rate,
// otherwise a RateSource converting it.
func WithSampleRate(src Source, rate int) Source {
	if src.SampleRate() == rate {
		return src
	}

	log.Printf("Resampling %s from %d Hz to %d Hz", src.Title(), src.SampleRate(), rate)
	return &RateSource{
		Source: src,
		rate:   rate,
		stream: resample.NewStream(src.SampleRate(), rate),
	}
}

func (s *RateSource) SampleRate() int { return s.rate }

// Read fills samples at the target rate, pulling from the wrapped source as needed
func (s *RateSource) Read(samples []int16) (int, error) {
	if cap(s.out) < len(samples) {
		s.out = make([]float32, len(samples))
	}
	out := s.out[:len(samples)]

	n := 0
	var err error
	for n < len(out) {
		n += s.stream.Read(out[n:], s.eof)
		if n == len(out) || s.eof {
			break
		}
		if err = s.fill(len(out) - n); err != nil {
			break
		}
	}

	for i := 0; i < n; i++ {
		samples[i] = audio.SampleToInt16(out[i])
	}

	if err != nil {
		return n, err
	}
	if s.eof && n < len(samples) {
		return n, io.EOF
	}
	return n, nil
}

// fill reads enough input for want output samples
func (s *RateSource) fill(want int) error {
	need := want*s.Source.SampleRate()/s.rate + 2
	if cap(s.in) < need {
		s.in = make([]int16, need)
		s.inF = make([]float32, need)
	}

	n, err := s.Source.Read(s.in[:need])
	for i := 0; i < n; i++ {
		s.inF[i] = audio.SampleFromInt16(s.in[i])
	}
	s.stream.Write(s.inF[:n])

	if err == io.EOF {
		s.eof = true
		return nil
	}
	return err
}

func titleFromPath(path string) string {
	filename := filepath.Base(path)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// toInt16 rescales a signed sample of the given bit depth to 16 bits
func toInt16(sample, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(sample)
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	default:
		return int16(sample << (16 - bitDepth))
	}
}

// downmixInts averages interleaved integer frames into dst and returns the frame count
func downmixInts(data []int, channels, bitDepth int, dst []int16) int {
	if channels < 1 {
		return 0
	}

	frames := min(len(data)/channels, len(dst))
	for i := 0; i < frames; i++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			v := data[i*channels+ch]
			if bitDepth == 8 {
				// 8-bit PCM is unsigned
				v -= 128
			}
			sum += v
		}
		dst[i] = toInt16(sum/channels, bitDepth)
	}
	return frames
}

// MP3Source reads from an MP3 file
type MP3Source struct {
	file    *os.File
	decoder *mp3.Decoder
	title   string
	buf     []byte
}

// NewMP3Source creates a new MP3 audio source
func NewMP3Source(filePath string) (*MP3Source, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	title := titleFromPath(filePath)
	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", title, decoder.SampleRate())

	return &MP3Source{
		file:    f,
		decoder: decoder,
		title:   title,
	}, nil
}

// Read decodes stereo int16 frames and averages them to mono
func (s *MP3Source) Read(samples []int16) (int, error) {
	// go-mp3 always produces 16-bit stereo
	need := len(samples) * 4
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	n, err := io.ReadFull(s.decoder, buf)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	frames := n / 4
	for i := 0; i < frames; i++ {
		l := int(int16(binary.LittleEndian.Uint16(buf[i*4:])))
		r := int(int16(binary.LittleEndian.Uint16(buf[i*4+2:])))
		samples[i] = int16((l + r) / 2)
	}

	return frames, err
}

func (s *MP3Source) SampleRate() int { return s.decoder.SampleRate() }
func (s *MP3Source) Title() string   { return s.title }
func (s *MP3Source) Close() error    { return s.file.Close() }

// FLACSource reads from a FLAC file
type FLACSource struct {
	file     *os.File
	stream   *flac.Stream
	channels int
	bitDepth int
	title    string
	pending  []int16
}

// NewFLACSource creates a new FLAC audio source
func NewFLACSource(filePath string) (*FLACSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	title := titleFromPath(filePath)

	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		title, info.SampleRate, info.NChannels, info.BitsPerSample)

	return &FLACSource{
		file:     f,
		stream:   stream,
		channels: int(info.NChannels),
		bitDepth: int(info.BitsPerSample),
		title:    title,
	}, nil
}

// Read parses frames until samples is full, keeping any remainder for the next call
func (s *FLACSource) Read(samples []int16) (int, error) {
	var err error

	for len(s.pending) < len(samples) {
		frame, perr := s.stream.ParseNext()
		if perr != nil {
			err = perr
			break
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			sum := 0
			for ch := 0; ch < s.channels; ch++ {
				sum += int(frame.Subframes[ch].Samples[i])
			}
			s.pending = append(s.pending, toInt16(sum/s.channels, s.bitDepth))
		}
	}

	n := copy(samples, s.pending)
	s.pending = s.pending[n:]

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("failed to parse FLAC frame: %w", err)
	}
	if err == io.EOF && len(s.pending) > 0 {
		err = nil
	}
	return n, err
}

func (s *FLACSource) SampleRate() int { return int(s.stream.Info.SampleRate) }
func (s *FLACSource) Title() string   { return s.title }
func (s *FLACSource) Close() error    { return s.file.Close() }

// WAVSource reads from a PCM WAV file
type WAVSource struct {
	file    *os.File
	decoder *wav.Decoder
	title   string
	intBuf  *goaudio.IntBuffer
}

// NewWAVSource creates a new WAV audio source
func NewWAVSource(filePath string) (*WAVSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", filePath)
	}

	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to find PCM data: %w", err)
	}

	title := titleFromPath(filePath)
	log.Printf("Loaded WAV: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		title, decoder.SampleRate, decoder.NumChans, decoder.BitDepth)

	return &WAVSource{
		file:    f,
		decoder: decoder,
		title:   title,
	}, nil
}

// Read pulls interleaved frames and averages them to mono
func (s *WAVSource) Read(samples []int16) (int, error) {
	channels := int(s.decoder.NumChans)
	need := len(samples) * channels

	if s.intBuf == nil || cap(s.intBuf.Data) < need {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, need),
			Format: s.decoder.Format(),
		}
	}
	s.intBuf.Data = s.intBuf.Data[:need]

	n, err := s.decoder.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("failed to read WAV data: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	frames := downmixInts(s.intBuf.Data[:n], channels, int(s.decoder.BitDepth), samples)
	if n < need {
		return frames, io.EOF
	}
	return frames, nil
}

func (s *WAVSource) SampleRate() int { return int(s.decoder.SampleRate) }
func (s *WAVSource) Title() string   { return s.title }
func (s *WAVSource) Close() error    { return s.file.Close() }

// OggSource reads from an Ogg Vorbis file
type OggSource struct {
	file   *os.File
	reader *oggvorbis.Reader
	title  string
	buf    []float32
}

// NewOggSource creates a new Ogg Vorbis audio source
func NewOggSource(filePath string) (*OggSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Ogg file: %w", err)
	}

	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode Ogg Vorbis: %w", err)
	}

	title := titleFromPath(filePath)
	log.Printf("Loaded Ogg Vorbis: %s (sample rate: %d Hz, channels: %d)",
		title, reader.SampleRate(), reader.Channels())

	return &OggSource{
		file:   f,
		reader: reader,
		title:  title,
	}, nil
}

// Read decodes interleaved float frames and averages them to mono
func (s *OggSource) Read(samples []int16) (int, error) {
	channels := s.reader.Channels()
	need := len(samples) * channels
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	buf := s.buf[:need]

	filled := 0
	var err error
	for filled < need {
		var n int
		n, err = s.reader.Read(buf[filled:])
		filled += n
		if err != nil {
			break
		}
	}

	frames := filled / channels
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += buf[i*channels+ch]
		}
		samples[i] = audio.SampleToInt16(sum / float32(channels))
	}

	return frames, err
}

func (s *OggSource) SampleRate() int { return s.reader.SampleRate() }
func (s *OggSource) Title() string   { return s.title }
func (s *OggSource) Close() error    { return s.file.Close() }
