// ABOUTME: Tests for WAV container decoder
// ABOUTME: Tests mono and stereo containers and malformed input
package decode

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildWAV writes a canonical 44-byte header followed by 16-bit samples
func buildWAV(t *testing.T, sampleRate, channels int, samples []int16) []byte {
	t.Helper()

	var buf bytes.Buffer
	dataLen := uint32(len(samples) * 2)
	blockAlign := uint16(channels * 2)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36)+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

func TestWAVDecodeMono(t *testing.T) {
	data := buildWAV(t, 22050, 1, []int16{0, 16384, -16384, -32768})

	if Detect(data) != Container {
		t.Fatal("expected built WAV to be detected as container")
	}

	buf, err := NewWAV().Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if buf.SampleRate != 22050 {
		t.Errorf("expected container rate 22050, got %d", buf.SampleRate)
	}
	if len(buf.Samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(buf.Samples))
	}

	// go-audio normalizes by 32767
	if buf.Samples[1] < 0.49 || buf.Samples[1] > 0.51 {
		t.Errorf("expected ~0.5, got %f", buf.Samples[1])
	}
	if buf.Samples[3] != -1 {
		t.Errorf("expected min sample clamped to -1, got %f", buf.Samples[3])
	}
}

func TestWAVDecodeStereoDownmix(t *testing.T) {
	// Two frames: (L=16384, R=-16384) and (L=16384, R=16384)
	data := buildWAV(t, 48000, 2, []int16{16384, -16384, 16384, 16384})

	buf, err := NewWAV().Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(buf.Samples) != 2 {
		t.Fatalf("expected 2 mono frames, got %d", len(buf.Samples))
	}
	if buf.Samples[0] != 0 {
		t.Errorf("expected opposite channels to cancel, got %f", buf.Samples[0])
	}
	if buf.Samples[1] < 0.49 || buf.Samples[1] > 0.51 {
		t.Errorf("expected ~0.5, got %f", buf.Samples[1])
	}
	if buf.SampleRate != 48000 {
		t.Errorf("expected 48000, got %d", buf.SampleRate)
	}
}

func TestWAVDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"bare magic", []byte("RIFF\x00\x00\x00\x00WAVE")},
		{"truncated fmt", []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWAV().Decode(tt.input); err == nil {
				t.Error("expected decode error for malformed container")
			}
		})
	}
}

func TestForKind(t *testing.T) {
	if _, err := ForKind(RawSamples, 44100); err != nil {
		t.Errorf("expected raw decoder, got error: %v", err)
	}
	if _, err := ForKind(Container, 44100); err != nil {
		t.Errorf("expected container decoder, got error: %v", err)
	}
	if _, err := ForKind(Unrecognized, 44100); err == nil {
		t.Error("expected error for unrecognized kind")
	}
}
