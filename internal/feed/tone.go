// ABOUTME: Test tone generator for the development feed
// ABOUTME: Generates a sine wave, optionally limited to a fixed duration
package feed

import (
	"io"
	"math"
	"time"
)

// ToneSource generates a mono sine wave at half volume
type ToneSource struct {
	sampleRate  int
	frequency   float64
	total       uint64 // 0 means endless
	sampleIndex uint64
}

// NewToneSource creates a tone generator; a zero duration never ends
func NewToneSource(sampleRate int, frequency float64, duration time.Duration) *ToneSource {
	return &ToneSource{
		sampleRate: sampleRate,
		frequency:  frequency,
		total:      uint64(duration.Seconds() * float64(sampleRate)),
	}
}

func (s *ToneSource) Read(samples []int16) (int, error) {
	n := len(samples)
	if s.total > 0 {
		remaining := s.total - s.sampleIndex
		if remaining == 0 {
			return 0, io.EOF
		}
		if uint64(n) > remaining {
			n = int(remaining)
		}
	}

	for i := 0; i < n; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		samples[i] = int16(math.Sin(2*math.Pi*s.frequency*t) * 32767.0 * 0.5)
	}
	s.sampleIndex += uint64(n)

	if s.total > 0 && s.sampleIndex == s.total {
		return n, io.EOF
	}
	return n, nil
}

func (s *ToneSource) SampleRate() int { return s.sampleRate }
func (s *ToneSource) Title() string   { return "Test Tone" }
func (s *ToneSource) Close() error    { return nil }
