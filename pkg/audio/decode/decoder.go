// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for chunk decoders and kind-based selection
package decode

import (
	"fmt"

	"github.com/pdugic/audio-analyzer/pkg/audio"
)

// Decoder decodes one chunk into a normalized mono buffer
type Decoder interface {
	// Decode converts chunk bytes to a mono buffer at the decoder's rate
	Decode(data []byte) (audio.Buffer, error)
}

// ForKind returns the decoder for a detected chunk kind.
// sessionRate applies to raw samples only; containers carry their own rate.
func ForKind(kind Kind, sessionRate int) (Decoder, error) {
	switch kind {
	case RawSamples:
		return NewPCM(sessionRate)
	case Container:
		return NewWAV(), nil
	default:
		return nil, fmt.Errorf("no decoder for kind: %s", kind)
	}
}
