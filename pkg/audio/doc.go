// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the decoded Buffer type and sample conversion functions
// Package audio provides fundamental audio types shared by the decoders,
// the playback core and the output devices.
//
// A Buffer is mono, normalized float32 audio at its own sample rate:
//
//	buf := audio.Buffer{Samples: samples, SampleRate: 44100}
//	d := buf.Duration() // seconds
//
// Conversions between signed 16-bit PCM and floats use a fixed 32768 scale,
// so -32768 maps exactly to -1 and 32767 stays just below 1.
package audio
