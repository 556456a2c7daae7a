// ABOUTME: Audio output package for playing scheduled audio
// ABOUTME: Provides the Device interface with oto and headless implementations
// Package output provides playback devices that accept buffers with an
// absolute start time on the device clock.
//
// Both devices render a Timeline: a fixed-rate mono frame clock that only
// advances while the device is running. Oto plays it through the system audio
// device, Null advances it from the wall clock and discards the audio.
//
// Example:
//
//	dev, err := output.NewOto(44100)
//	err = dev.Resume()
//	err = dev.Schedule(buf, dev.Now()+0.05)
package output
