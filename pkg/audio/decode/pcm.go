// ABOUTME: PCM audio decoder
// ABOUTME: Decodes raw 16-bit little-endian mono PCM to normalized floats
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/pdugic/audio-analyzer/pkg/audio"
)

// PCMDecoder decodes uncontainerized PCM at a fixed session rate
type PCMDecoder struct {
	sampleRate int
}

// NewPCM creates a new PCM decoder
func NewPCM(sampleRate int) (Decoder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	return &PCMDecoder{
		sampleRate: sampleRate,
	}, nil
}

// Decode converts PCM bytes to a mono buffer
func (d *PCMDecoder) Decode(data []byte) (audio.Buffer, error) {
	return audio.Buffer{
		Samples:    DecodePCM16(data),
		SampleRate: d.sampleRate,
	}, nil
}

// DecodePCM16 pairs bytes into little-endian int16 samples.
// A trailing unpaired byte is ignored.
func DecodePCM16(data []byte) []float32 {
	numSamples := len(data) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples
}
