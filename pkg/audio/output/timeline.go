// ABOUTME: Fixed-rate render timeline shared by output devices
// ABOUTME: Places scheduled buffers on a frame clock and mixes them on render
package output

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/pdugic/audio-analyzer/pkg/audio"
	"github.com/pdugic/audio-analyzer/pkg/audio/resample"
)

// Timeline is a mono frame clock that renders scheduled buffers
type Timeline struct {
	mu       sync.Mutex
	rate     int
	position int64 // frames rendered so far
	pending  []scheduledBuffer
}

type scheduledBuffer struct {
	start   int64
	samples []float32
}

func (b scheduledBuffer) end() int64 {
	return b.start + int64(len(b.samples))
}

// NewTimeline creates a timeline rendering at the given rate
func NewTimeline(sampleRate int) *Timeline {
	return &Timeline{rate: sampleRate}
}

// SampleRate returns the render rate
func (t *Timeline) SampleRate() int {
	return t.rate
}

// Now returns the rendered time in seconds
func (t *Timeline) Now() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.position) / float64(t.rate)
}

// Position returns the number of frames rendered
func (t *Timeline) Position() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Pending returns the number of buffers not yet fully rendered
func (t *Timeline) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Schedule places a buffer at the given time. The buffer occupies frames
// round(at*rate) up to round((at+duration)*rate), so buffers chained end to
// start never overlap or leave a frame between them. Buffers at another rate
// are resampled to fill exactly that span.
func (t *Timeline) Schedule(buf audio.Buffer, at float64) error {
	if buf.SampleRate <= 0 {
		return fmt.Errorf("invalid buffer sample rate: %d", buf.SampleRate)
	}
	if len(buf.Samples) == 0 {
		return nil
	}

	start := int64(math.Round(at * float64(t.rate)))
	end := int64(math.Round((at + buf.Duration()) * float64(t.rate)))
	if end <= start {
		// shorter than one device frame
		return nil
	}
	samples := resample.ConvertLength(buf.Samples, buf.SampleRate, t.rate, int(end-start))

	t.mu.Lock()
	defer t.mu.Unlock()

	// Already partially in the past: play the remainder now
	if start < t.position {
		skip := t.position - start
		if skip >= int64(len(samples)) {
			return fmt.Errorf("buffer ended before current position")
		}
		samples = samples[skip:]
		start = t.position
	}

	entry := scheduledBuffer{start: start, samples: samples}
	i := sort.Search(len(t.pending), func(i int) bool {
		return t.pending[i].start > start
	})
	t.pending = append(t.pending, scheduledBuffer{})
	copy(t.pending[i+1:], t.pending[i:])
	t.pending[i] = entry

	return nil
}

// Render fills dst with the next frames and advances the clock.
// Frames with nothing scheduled are silent.
func (t *Timeline) Render(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	from := t.position
	to := from + int64(len(dst))

	kept := t.pending[:0]
	for _, b := range t.pending {
		if b.start >= to {
			kept = append(kept, b)
			continue
		}

		lo := max(b.start, from)
		hi := min(b.end(), to)
		for f := lo; f < hi; f++ {
			dst[f-from] = audio.Clamp(dst[f-from] + b.samples[f-b.start])
		}

		if b.end() > to {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(t.pending); i++ {
		t.pending[i] = scheduledBuffer{}
	}
	t.pending = kept
	t.position = to
}

// Clear drops every pending buffer
func (t *Timeline) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = nil
}
