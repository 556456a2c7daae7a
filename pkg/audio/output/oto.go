// ABOUTME: Oto-based audio output implementation
// ABOUTME: Plays a float32 mono render timeline through the system audio device
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/pdugic/audio-analyzer/pkg/audio"
)

// Oto output implementation using oto library.
// oto allows one context per process, so create at most one Oto.
type Oto struct {
	mu       sync.Mutex
	otoCtx   *oto.Context
	player   *oto.Player
	timeline *Timeline
	scratch  []float32
	closed   bool
}

// NewOto opens the system audio device at the given rate. The device starts
// suspended; call Resume to begin playback.
func NewOto(sampleRate int) (*Oto, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o := &Oto{
		otoCtx:   ctx,
		timeline: NewTimeline(sampleRate),
	}

	// Persistent player pulling from the timeline
	o.player = ctx.NewPlayer(o)

	if err := ctx.Suspend(); err != nil {
		log.Printf("Warning: initial suspend failed: %v", err)
	}

	log.Printf("Audio output initialized: %dHz, mono (oto)", sampleRate)

	return o, nil
}

// Read renders the timeline as float32 little-endian frames for oto
func (o *Oto) Read(p []byte) (int, error) {
	n := len(p) / 4
	if cap(o.scratch) < n {
		o.scratch = make([]float32, n)
	}
	samples := o.scratch[:n]

	o.timeline.Render(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}

	return n * 4, nil
}

// Now returns the device clock in seconds
func (o *Oto) Now() float64 {
	return o.timeline.Now()
}

// Schedule queues a buffer on the device timeline
func (o *Oto) Schedule(buf audio.Buffer, at float64) error {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()

	if closed {
		return fmt.Errorf("output closed")
	}

	return o.timeline.Schedule(buf, at)
}

// Resume starts the audio device
func (o *Oto) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("output closed")
	}

	if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}

	if !o.player.IsPlaying() {
		o.player.Play()
	}

	return nil
}

// Suspend pauses the audio device
func (o *Oto) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("output closed")
	}

	if err := o.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend oto context: %w", err)
	}

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	o.timeline.Clear()

	var firstErr error
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close oto player: %w", err)
		}
		o.player = nil
	}
	if err := o.otoCtx.Suspend(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to suspend oto context: %w", err)
	}

	return firstErr
}
