// ABOUTME: Output lifecycle state machine
// ABOUTME: Suspended -> Running -> Closed with best-effort device transitions
package playback

import (
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/pdugic/audio-analyzer/pkg/audio/output"
)

// State is the output lifecycle state
type State int

const (
	Suspended State = iota
	Running
	Closed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Lifecycle wraps a device with the three-state machine.
// Device refusals are logged and swallowed; the state then stays as it was.
type Lifecycle struct {
	mu     sync.Mutex
	device output.Device
	state  State
}

// NewLifecycle takes ownership of a device in the Suspended state
func NewLifecycle(device output.Device) *Lifecycle {
	return &Lifecycle{
		device: device,
		state:  Suspended,
	}
}

// State returns the current state
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Play resumes the device. Must follow a user gesture on platforms that gate resume.
func (l *Lifecycle) Play() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Suspended {
		return
	}

	if err := l.device.Resume(); err != nil {
		log.Printf("Output resume refused: %v", errors.Wrap(ErrPlatformPolicyDenied, err.Error()))
		return
	}

	l.state = Running
	log.Printf("Output running")
}

// Pause suspends the device
func (l *Lifecycle) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Running {
		return
	}

	if err := l.device.Suspend(); err != nil {
		log.Printf("Output suspend refused: %v", errors.Wrap(ErrPlatformPolicyDenied, err.Error()))
		return
	}

	l.state = Suspended
	log.Printf("Output suspended")
}

// Close releases the device. Calling it again is a no-op.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Closed {
		return
	}

	l.state = Closed
	if err := l.device.Close(); err != nil {
		log.Printf("Output close error: %v", errors.Wrap(ErrPlatformPolicyDenied, err.Error()))
	}
	log.Printf("Output closed")
}
