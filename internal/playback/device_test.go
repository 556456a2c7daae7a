// ABOUTME: Manual-clock fake output device for playback tests
// ABOUTME: Records every scheduled buffer and can refuse transitions
package playback

import (
	"fmt"
	"sync"

	"github.com/pdugic/audio-analyzer/pkg/audio"
)

type scheduledCall struct {
	at  float64
	buf audio.Buffer
}

type fakeDevice struct {
	mu          sync.Mutex
	now         float64
	scheduled   []scheduledCall
	denyResume  bool
	denySuspend bool
	rejectAll   bool
	resumes     int
	suspends    int
	closes      int
}

func (d *fakeDevice) Now() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.now
}

func (d *fakeDevice) advance(seconds float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now += seconds
}

func (d *fakeDevice) Schedule(buf audio.Buffer, at float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rejectAll {
		return fmt.Errorf("device full")
	}
	d.scheduled = append(d.scheduled, scheduledCall{at: at, buf: buf})
	return nil
}

func (d *fakeDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resumes++
	if d.denyResume {
		return fmt.Errorf("resume requires a user gesture")
	}
	return nil
}

func (d *fakeDevice) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspends++
	if d.denySuspend {
		return fmt.Errorf("suspend not allowed")
	}
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

func (d *fakeDevice) calls() []scheduledCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]scheduledCall(nil), d.scheduled...)
}
