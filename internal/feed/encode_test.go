// ABOUTME: Tests for feed frame encodings
// ABOUTME: Verifies each encoding decodes back to the original samples
package feed

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/pdugic/audio-analyzer/internal/protocol"
	"github.com/pdugic/audio-analyzer/pkg/audio"
	"github.com/pdugic/audio-analyzer/pkg/audio/decode"
	"github.com/pdugic/audio-analyzer/pkg/audio/encode"
)

var testSamples = []int16{0, 1000, -1000, 32767, -32768, 42}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		input    string
		expected Encoding
		wantErr  bool
	}{
		{"", EncodingRaw, false},
		{"raw", EncodingRaw, false},
		{"base64", EncodingBase64, false},
		{"wav", EncodingWAV, false},
		{"mixed", EncodingMixed, false},
		{"opus", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEncoding(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestMixedRotation(t *testing.T) {
	expected := []Encoding{EncodingRaw, EncodingBase64, EncodingWAV, EncodingRaw}
	for i, want := range expected {
		if got := EncodingMixed.forFrame(i); got != want {
			t.Errorf("frame %d: expected %s, got %s", i, want, got)
		}
	}

	if EncodingWAV.forFrame(1) != EncodingWAV {
		t.Error("fixed encodings must not rotate")
	}
}

func TestEncodeRaw(t *testing.T) {
	msgType, data, err := encodeFrame(EncodingRaw, 0, testSamples, 44100, 0)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("expected binary message, got %d", msgType)
	}
	if len(data) != len(testSamples)*2 {
		t.Fatalf("expected %d bytes, got %d", len(testSamples)*2, len(data))
	}
	for i, want := range testSamples {
		if got := int16(binary.LittleEndian.Uint16(data[i*2:])); got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestEncodeBase64(t *testing.T) {
	msgType, data, err := encodeFrame(EncodingBase64, 0, testSamples, 22050, 1.25)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Errorf("expected text message, got %d", msgType)
	}

	var msg struct {
		Type    string              `json:"type"`
		Payload protocol.AudioFrame `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if msg.Type != protocol.TypeAudioFrame {
		t.Errorf("expected audio_frame, got %s", msg.Type)
	}
	if msg.Payload.SampleRate != 22050 || msg.Payload.TimePos != 1.25 {
		t.Errorf("unexpected metadata: %+v", msg.Payload)
	}

	raw, err := base64.StdEncoding.DecodeString(msg.Payload.FilteredRawData)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	pcm, _ := encode.NewPCM().Encode(testSamples)
	if string(raw) != string(pcm) {
		t.Error("base64 payload does not match raw PCM")
	}
}

func TestEncodeWAVRoundTrip(t *testing.T) {
	msgType, data, err := encodeFrame(EncodingWAV, 0, testSamples, 16000, 0)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("expected binary message, got %d", msgType)
	}

	if decode.Detect(data) != decode.Container {
		t.Fatalf("expected container detection, got %s", decode.Detect(data))
	}

	buf, err := decode.NewWAV().Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.SampleRate != 16000 {
		t.Errorf("expected 16000Hz, got %d", buf.SampleRate)
	}
	if len(buf.Samples) != len(testSamples) {
		t.Fatalf("expected %d samples, got %d", len(testSamples), len(buf.Samples))
	}
	for i, want := range testSamples {
		if got := audio.SampleToInt16(buf.Samples[i]); got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}
