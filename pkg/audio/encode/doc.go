// ABOUTME: Audio encoder package for putting mono PCM frames on the wire
// ABOUTME: Provides Encoder interface and implementations for raw PCM and WAV
// Package encode provides the frame encoders used by the development feed.
//
// Supports: raw 16-bit little-endian PCM, and a self-describing WAV
// container per frame.
//
// Example:
//
//	encoder, err := encode.NewWAV(44100)
//	data, err := encoder.Encode(samples)
package encode
