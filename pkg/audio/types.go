// ABOUTME: Audio type definitions
// ABOUTME: Defines decoded mono buffers and sample conversion helpers
package audio

import "time"

const (
	// Int16Scale maps signed 16-bit PCM onto [-1, 1)
	Int16Scale = 32768.0

	// DefaultSampleRate is the rate raw PCM chunks are interpreted at
	DefaultSampleRate = 44100
)

// Buffer represents decoded mono audio ready for scheduling
type Buffer struct {
	Samples    []float32 // Normalized samples, clamped to [-1, 1]
	SampleRate int
}

// Duration returns the buffer length in seconds
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// DurationTime returns the buffer length as a time.Duration
func (b Buffer) DurationTime() time.Duration {
	return time.Duration(b.Duration() * float64(time.Second))
}

// Clamp limits a sample to [-1, 1]
func Clamp(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// SampleFromInt16 converts a 16-bit sample to a normalized float
func SampleFromInt16(sample int16) float32 {
	return Clamp(float32(sample) / Int16Scale)
}

// SampleToInt16 converts a normalized float back to 16-bit
func SampleToInt16(sample float32) int16 {
	v := Clamp(sample) * Int16Scale
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
