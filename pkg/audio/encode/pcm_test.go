// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests 16-bit little-endian encoding
package encode

import (
	"encoding/binary"
	"testing"
)

func TestPCMEncoder_Encode(t *testing.T) {
	encoder := NewPCM()
	defer encoder.Close()

	samples := []int16{0, 32767, -32768, 0x1234, -0x5678}

	output, err := encoder.Encode(samples)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	if len(output) != len(samples)*2 {
		t.Errorf("Encode() output size = %d, want %d", len(output), len(samples)*2)
	}

	for i, expected := range samples {
		actual := int16(binary.LittleEndian.Uint16(output[i*2:]))
		if actual != expected {
			t.Errorf("Sample %d: got %d, want %d", i, actual, expected)
		}
	}
}

func TestPCMEncoder_Empty(t *testing.T) {
	output, err := NewPCM().Encode(nil)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if len(output) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(output))
	}
}
