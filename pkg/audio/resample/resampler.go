// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used by output devices to render buffers whose rate differs from the device
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	if channels < 1 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		position:   0.0,
	}
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
func (r *Resampler) Resample(input []float32, output []float32) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0

	for outIdx < outputFrames {
		inputPos := r.position
		inputIdx := int(inputPos)

		// If we've consumed all input, stop
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := float32(inputPos - float64(inputIdx))

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[(inputIdx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = sample1*(1-frac) + sample2*frac
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next chunk
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(math.Round(float64(inputFrames) / r.ratio))
	return outputFrames * r.channels
}

// Convert resamples a whole mono buffer so that its duration is preserved.
// Frames past the last interpolation point hold the final input sample.
func Convert(input []float32, inputRate, outputRate int) []float32 {
	if inputRate == outputRate || len(input) == 0 || inputRate <= 0 || outputRate <= 0 {
		return input
	}

	r := New(inputRate, outputRate, 1)
	return ConvertLength(input, inputRate, outputRate, r.OutputSamplesNeeded(len(input)))
}

// ConvertLength resamples a mono buffer to exactly frames samples.
// Callers placing buffers on a frame clock derive frames from the buffer's
// start and end positions so that chained buffers meet without a seam.
func ConvertLength(input []float32, inputRate, outputRate, frames int) []float32 {
	if frames <= 0 {
		return nil
	}
	if frames == len(input) && inputRate == outputRate {
		return input
	}

	output := make([]float32, frames)
	if len(input) == 0 || inputRate <= 0 || outputRate <= 0 {
		return output
	}

	n := New(inputRate, outputRate, 1).Resample(input, output)

	last := input[len(input)-1]
	for i := n; i < frames; i++ {
		output[i] = last
	}

	return output
}
