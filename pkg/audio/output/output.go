// ABOUTME: Audio output device interface definition
// ABOUTME: Common interface for schedulable playback backends
package output

import "github.com/pdugic/audio-analyzer/pkg/audio"

// Device is a playback sink with its own monotonic clock.
// Buffers are handed over with an absolute start time on that clock and the
// device plays them without further calls.
type Device interface {
	// Now returns the device clock in seconds
	Now() float64

	// Schedule queues a buffer to begin at the given device time
	Schedule(buf audio.Buffer, at float64) error

	// Resume starts or restarts the device clock
	Resume() error

	// Suspend pauses the device clock
	Suspend() error

	// Close releases output resources
	Close() error
}
