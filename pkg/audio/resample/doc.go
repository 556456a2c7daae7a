// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts float audio between different sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	r := resample.New(22050, 44100, 1)
//	n := r.Resample(inputSamples, outputSamples)
//
//	// or, for a whole mono buffer
//	out := resample.Convert(samples, 22050, 44100)
//
//	// or, for a signal arriving in pieces
//	s := resample.NewStream(48000, 44100)
//	s.Write(piece)
//	n := s.Read(out, false)
package resample
