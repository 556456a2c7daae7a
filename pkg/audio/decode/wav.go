// ABOUTME: WAV container decoder
// ABOUTME: Decodes RIFF/WAVE chunks to mono floats at the container's own rate
package decode

import (
	"bytes"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pdugic/audio-analyzer/pkg/audio"
)

const wavFormatPCM = 1

// WAVDecoder decodes self-describing WAV chunks
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode parses the container and downmixes every frame to mono
func (d *WAVDecoder) Decode(data []byte) (audio.Buffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return audio.Buffer{}, fmt.Errorf("invalid WAV container")
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		return audio.Buffer{}, fmt.Errorf("unsupported WAV audio format: %d", decoder.WavAudioFormat)
	}

	sampleRate := int(decoder.SampleRate)
	numChans := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if sampleRate <= 0 || numChans < 1 {
		return audio.Buffer{}, fmt.Errorf("invalid WAV format: %dHz, %d channels", sampleRate, numChans)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to read PCM data: %w", err)
	}

	return audio.Buffer{
		Samples:    downmix(buf.Data, numChans, bitDepth),
		SampleRate: sampleRate,
	}, nil
}

// downmix averages interleaved integer frames into normalized mono samples
func downmix(data []int, numChans, bitDepth int) []float32 {
	maxVal := float64(goaudio.IntMaxSignedValue(bitDepth))
	offset := 0
	if bitDepth == 8 {
		// 8-bit WAV is unsigned
		offset = 128
	}

	numFrames := len(data) / numChans
	samples := make([]float32, numFrames)

	for i := 0; i < numFrames; i++ {
		var sum float64
		for ch := 0; ch < numChans; ch++ {
			sum += float64(data[i*numChans+ch]-offset) / maxVal
		}
		samples[i] = audio.Clamp(float32(sum / float64(numChans)))
	}

	return samples
}
