// ABOUTME: Headless audio output driven by the wall clock
// ABOUTME: Renders the timeline into nothing so scheduling runs without a sound card
package output

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pdugic/audio-analyzer/pkg/audio"
)

// Null output renders in real time and discards the audio
type Null struct {
	timeline *Timeline
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	running bool
	closed  bool
	mark    time.Time // wall time when the clock last resumed
	markPos int64     // timeline position at mark
	scratch []float32
}

// NewNull creates a headless output. The device starts suspended.
func NewNull(sampleRate int) *Null {
	ctx, cancel := context.WithCancel(context.Background())

	n := &Null{
		timeline: NewTimeline(sampleRate),
		interval: 10 * time.Millisecond,
		ctx:      ctx,
		cancel:   cancel,
	}

	go n.run()

	return n
}

// run advances the timeline every tick while running
func (n *Null) run() {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			n.mu.Lock()
			if n.running {
				n.advance(time.Now())
			}
			n.mu.Unlock()
		}
	}
}

// advance renders up to the wall-clock target (must hold n.mu)
func (n *Null) advance(now time.Time) {
	target := n.markPos + int64(now.Sub(n.mark).Seconds()*float64(n.timeline.SampleRate()))
	frames := int(target - n.timeline.Position())
	if frames <= 0 {
		return
	}

	if cap(n.scratch) < frames {
		n.scratch = make([]float32, frames)
	}
	n.timeline.Render(n.scratch[:frames])
}

// Now returns the device clock in seconds
func (n *Null) Now() float64 {
	return n.timeline.Now()
}

// Schedule queues a buffer on the timeline
func (n *Null) Schedule(buf audio.Buffer, at float64) error {
	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()

	if closed {
		return fmt.Errorf("output closed")
	}

	return n.timeline.Schedule(buf, at)
}

// Resume starts the clock
func (n *Null) Resume() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return fmt.Errorf("output closed")
	}

	if !n.running {
		n.running = true
		n.mark = time.Now()
		n.markPos = n.timeline.Position()
	}

	return nil
}

// Suspend stops the clock
func (n *Null) Suspend() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return fmt.Errorf("output closed")
	}

	if n.running {
		n.advance(time.Now())
		n.running = false
	}

	return nil
}

// Close stops the render loop
func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	n.closed = true
	n.running = false
	n.cancel()
	n.timeline.Clear()

	return nil
}
