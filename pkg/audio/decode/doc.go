// ABOUTME: Audio decoder package for chunk detection and decoding
// ABOUTME: Provides Detect, the Decoder interface and PCM and WAV implementations
// Package decode turns incoming chunks into normalized mono buffers.
//
// Detect classifies a chunk as a RIFF/WAVE container or raw 16-bit
// little-endian PCM. Containers decode at their own sample rate and are
// downmixed to mono; raw samples decode at the session rate.
//
// Example:
//
//	kind := decode.Detect(chunk)
//	decoder, err := decode.ForKind(kind, 44100)
//	buf, err := decoder.Decode(chunk)
package decode
