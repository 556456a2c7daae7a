// ABOUTME: WAV container encoder
// ABOUTME: Wraps each frame of mono 16-bit samples in its own RIFF/WAVE file
package encode

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

const wavFormatPCM = 1

// WAVEncoder produces one complete WAV file per Encode call
type WAVEncoder struct {
	sampleRate int
}

// NewWAV creates a WAV encoder for the given rate
func NewWAV(sampleRate int) (Encoder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	return &WAVEncoder{sampleRate: sampleRate}, nil
}

// Encode writes the header and samples to an in-memory file
func (e *WAVEncoder) Encode(samples []int16) ([]byte, error) {
	// the encoder seeks back to patch the chunk sizes on Close
	out := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(out, e.sampleRate, 16, 1, wavFormatPCM)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: e.sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize WAV: %w", err)
	}

	encoded, err := io.ReadAll(out.Reader())
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV: %w", err)
	}
	return encoded, nil
}

// Close releases resources
func (e *WAVEncoder) Close() error {
	return nil
}
