// ABOUTME: Continuous mono rate conversion across reads
// ABOUTME: Carries the interpolation position and unconsumed input between calls
package resample

// Stream converts an unbounded mono signal between sample rates. Unlike
// Resampler it keeps the input it has not interpolated past, so output is
// continuous across calls and its length tracks the exact rate ratio.
type Stream struct {
	ratio   float64 // input frames per output frame
	pos     float64 // read position into pending
	pending []float32
}

// NewStream creates a stream converter
func NewStream(inputRate, outputRate int) *Stream {
	return &Stream{
		ratio: float64(inputRate) / float64(outputRate),
	}
}

// Write queues input samples
func (s *Stream) Write(input []float32) {
	s.pending = append(s.pending, input...)
}

// Buffered returns the number of queued input samples
func (s *Stream) Buffered() int {
	return len(s.pending)
}

// Read fills output while two queued samples surround the read position and
// returns the count. With flush set the final sample is held until the
// queued input is used up.
func (s *Stream) Read(output []float32, flush bool) int {
	n := 0
	for n < len(output) {
		i := int(s.pos)
		switch {
		case i+1 < len(s.pending):
			frac := float32(s.pos - float64(i))
			output[n] = s.pending[i]*(1-frac) + s.pending[i+1]*frac
		case flush && i < len(s.pending):
			output[n] = s.pending[i]
		default:
			return s.consume(n)
		}
		n++
		s.pos += s.ratio
	}
	return s.consume(n)
}

// consume drops input the read position has moved past
func (s *Stream) consume(n int) int {
	drop := min(int(s.pos), len(s.pending))
	if drop > 0 {
		kept := copy(s.pending, s.pending[drop:])
		s.pending = s.pending[:kept]
		s.pos -= float64(drop)
	}
	return n
}
