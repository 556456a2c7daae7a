// ABOUTME: Gapless playback scheduler
// ABOUTME: Chains decoded buffers on the device clock without overlap
package playback

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/pdugic/audio-analyzer/pkg/audio"
	"github.com/pdugic/audio-analyzer/pkg/audio/output"
)

// Scheduler assigns device start times to buffers in call order.
// It is not safe for concurrent use; Session serializes access.
type Scheduler struct {
	device           output.Device
	safetyOffset     float64 // seconds
	maxLead          float64 // seconds, <= 0 disables the cap
	lastScheduledEnd float64 // device seconds

	stats SchedulerStats
}

// SchedulerStats tracks scheduler metrics
type SchedulerStats struct {
	Scheduled int64
	Dropped   int64
	Seconds   float64 // total audio handed to the device
}

// NewScheduler creates a scheduler for one device session
func NewScheduler(device output.Device, safetyOffset, maxLead time.Duration) *Scheduler {
	return &Scheduler{
		device:       device,
		safetyOffset: safetyOffset.Seconds(),
		maxLead:      maxLead.Seconds(),
	}
}

// Schedule hands a buffer to the device at
// max(lastScheduledEnd, now+safetyOffset) and returns that start time.
// A late buffer leaves a silent gap; it is never stretched.
func (s *Scheduler) Schedule(buf audio.Buffer) (float64, error) {
	now := s.device.Now()

	if s.maxLead > 0 && s.lastScheduledEnd-now > s.maxLead {
		s.stats.Dropped++
		return 0, errors.Wrapf(ErrQueueFull, "%.0fms already scheduled", (s.lastScheduledEnd-now)*1000)
	}

	startAt := now + s.safetyOffset
	if s.lastScheduledEnd > startAt {
		startAt = s.lastScheduledEnd
	}

	if err := s.device.Schedule(buf, startAt); err != nil {
		s.stats.Dropped++
		return 0, errors.Wrap(err, "device rejected buffer")
	}

	duration := buf.Duration()

	// Log first few buffers
	if s.stats.Scheduled < 5 {
		log.Printf("Scheduled buffer #%d: start=%.3fs, duration=%.1fms, lead=%.1fms, rate=%dHz",
			s.stats.Scheduled, startAt, duration*1000, (startAt-now)*1000, buf.SampleRate)
	}

	s.lastScheduledEnd = startAt + duration
	s.stats.Scheduled++
	s.stats.Seconds += duration

	return startAt, nil
}

// LastScheduledEnd returns the end of the most recently scheduled buffer
func (s *Scheduler) LastScheduledEnd() float64 {
	return s.lastScheduledEnd
}

// Lead returns how far scheduled audio reaches past the device clock
func (s *Scheduler) Lead() float64 {
	lead := s.lastScheduledEnd - s.device.Now()
	if lead < 0 {
		return 0
	}
	return lead
}

// Stats returns scheduler statistics
func (s *Scheduler) Stats() SchedulerStats {
	return s.stats
}
