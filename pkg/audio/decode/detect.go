// ABOUTME: Chunk format detection
// ABOUTME: Classifies a byte buffer as a RIFF/WAVE container or raw PCM samples
package decode

import "bytes"

// Kind is the detected format of a chunk
type Kind int

const (
	Unrecognized Kind = iota
	Container
	RawSamples
)

var (
	riffMagic = []byte("RIFF")
	waveMagic = []byte("WAVE")
)

// String returns the kind name for logs
func (k Kind) String() string {
	switch k {
	case Container:
		return "container"
	case RawSamples:
		return "raw"
	default:
		return "unrecognized"
	}
}

// Detect classifies a chunk. The container magic wins over the raw fallback;
// anything shorter than one 16-bit sample is unrecognized.
func Detect(data []byte) Kind {
	if len(data) < 2 {
		return Unrecognized
	}

	if len(data) >= 12 && bytes.Equal(data[0:4], riffMagic) && bytes.Equal(data[8:12], waveMagic) {
		return Container
	}

	return RawSamples
}
