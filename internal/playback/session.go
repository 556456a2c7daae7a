// ABOUTME: Playback session composing ingest, detection, decoding and scheduling
// ABOUTME: The only entry points for chunks and play/pause/close
package playback

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pdugic/audio-analyzer/pkg/audio"
	"github.com/pdugic/audio-analyzer/pkg/audio/decode"
	"github.com/pdugic/audio-analyzer/pkg/audio/output"
)

const (
	// DefaultSafetyOffset is the minimum lead before a new buffer starts
	DefaultSafetyOffset = 50 * time.Millisecond

	// DefaultMaxLead caps how much audio may be scheduled ahead of the clock
	DefaultMaxLead = 2 * time.Second
)

// Config holds session configuration
type Config struct {
	// SampleRate is the rate raw PCM chunks are interpreted at (default: 44100)
	SampleRate int

	// SafetyOffset absorbs device callback jitter (default: 50ms)
	SafetyOffset time.Duration

	// MaxLead drops buffers once this much audio is queued (default: 2s, negative disables)
	MaxLead time.Duration
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = audio.DefaultSampleRate
	}
	if c.SafetyOffset <= 0 {
		c.SafetyOffset = DefaultSafetyOffset
	}
	if c.MaxLead == 0 {
		c.MaxLead = DefaultMaxLead
	}
	return c
}

// Stats contains session statistics
type Stats struct {
	State          State
	Received       int64 // chunks accepted while running
	Discarded      int64 // chunks ignored while suspended or closed
	BytesReceived  int64
	Unrecognized   int64
	DecodeFailures int64
	Scheduled      int64
	Dropped        int64   // buffers rejected by the scheduler
	Lead           float64 // seconds of audio queued past the device clock
	Seconds        float64 // seconds of audio scheduled in total
}

// Session turns pushed chunks into gapless playback on one device.
// Every chunk is scheduled in call order; the mutex covers the whole
// normalize, decode and schedule path.
type Session struct {
	id        string
	config    Config
	lifecycle *Lifecycle
	scheduler *Scheduler
	decoders  map[decode.Kind]decode.Decoder

	mu    sync.Mutex
	stats Stats
}

// NewSession takes ownership of device. The session starts Suspended.
func NewSession(device output.Device, config Config) (*Session, error) {
	config = config.withDefaults()

	decoders := make(map[decode.Kind]decode.Decoder, 2)
	for _, kind := range []decode.Kind{decode.RawSamples, decode.Container} {
		d, err := decode.ForKind(kind, config.SampleRate)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create %s decoder", kind)
		}
		decoders[kind] = d
	}

	s := &Session{
		id:        uuid.New().String(),
		config:    config,
		lifecycle: NewLifecycle(device),
		scheduler: NewScheduler(device, config.SafetyOffset, config.MaxLead),
		decoders:  decoders,
	}

	log.Printf("Session %s created: raw rate %dHz, safety offset %v, max lead %v",
		s.id, config.SampleRate, config.SafetyOffset, config.MaxLead)

	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Config returns the effective configuration
func (s *Session) Config() Config {
	return s.config
}

// IngestChunk accepts one arrival. Only ErrInvalidInput is returned; decode
// and scheduling failures drop the chunk and are logged.
func (s *Session) IngestChunk(data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lifecycle.State() != Running {
		s.stats.Discarded++
		return nil
	}

	chunk, err := Normalize(data)
	if err != nil {
		return err
	}

	s.stats.Received++
	s.stats.BytesReceived += int64(len(chunk))

	kind := decode.Detect(chunk)
	if kind == decode.Unrecognized {
		s.stats.Unrecognized++
		log.Printf("Warning: dropped chunk: %v", errors.Wrapf(ErrUnrecognizedFormat, "%d bytes", len(chunk)))
		return nil
	}

	buf, err := s.decoders[kind].Decode(chunk)
	if err != nil {
		s.stats.DecodeFailures++
		log.Printf("Dropped %s chunk: %v", kind, errors.Wrap(ErrDecodeFailure, err.Error()))
		return nil
	}

	if len(buf.Samples) == 0 {
		return nil
	}

	if _, err := s.scheduler.Schedule(buf); err != nil {
		log.Printf("Dropped %s buffer: %v", kind, err)
	}

	return nil
}

// Play resumes output; refusals leave the session Suspended
func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifecycle.Play()
}

// Pause suspends output
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifecycle.Pause()
}

// Close releases the device and stops all future scheduling. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifecycle.Close()
}

// State returns the output state
func (s *Session) State() State {
	return s.lifecycle.State()
}

// Stats returns a snapshot of session statistics
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.State = s.lifecycle.State()

	sched := s.scheduler.Stats()
	stats.Scheduled = sched.Scheduled
	stats.Dropped = sched.Dropped
	stats.Seconds = sched.Seconds
	if stats.State != Closed {
		stats.Lead = s.scheduler.Lead()
	}

	return stats
}
