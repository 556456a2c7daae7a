// ABOUTME: PCM audio encoder
// ABOUTME: Encodes int16 samples to raw little-endian bytes
package encode

import (
	"encoding/binary"
)

// PCMEncoder encodes headerless 16-bit PCM
type PCMEncoder struct{}

// NewPCM creates a new PCM encoder
func NewPCM() Encoder {
	return &PCMEncoder{}
}

// Encode converts samples to little-endian bytes, 2 per sample
func (e *PCMEncoder) Encode(samples []int16) ([]byte, error) {
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(sample))
	}
	return output, nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}
