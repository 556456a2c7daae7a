// ABOUTME: Frame encodings sent by the development feed
// ABOUTME: Chooses raw PCM, base64 audio_frame JSON or WAV per frame
package feed

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/pdugic/audio-analyzer/internal/protocol"
	"github.com/pdugic/audio-analyzer/pkg/audio/encode"
)

// Encoding selects how frames are put on the wire
type Encoding string

const (
	EncodingRaw    Encoding = "raw"    // binary little-endian int16
	EncodingBase64 Encoding = "base64" // JSON audio_frame
	EncodingWAV    Encoding = "wav"    // binary WAV container per chunk
	EncodingMixed  Encoding = "mixed"  // rotates through the three above
)

// ParseEncoding validates an encoding name; empty means raw
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "":
		return EncodingRaw, nil
	case EncodingRaw, EncodingBase64, EncodingWAV, EncodingMixed:
		return Encoding(s), nil
	default:
		return "", fmt.Errorf("unknown encoding %q (supported: raw, base64, wav, mixed)", s)
	}
}

// forFrame resolves mixed to a concrete encoding for frame index
func (e Encoding) forFrame(index int) Encoding {
	if e != EncodingMixed {
		return e
	}
	return []Encoding{EncodingRaw, EncodingBase64, EncodingWAV}[index%3]
}

// encodeFrame returns the websocket message type and payload for one frame
func encodeFrame(enc Encoding, index int, samples []int16, sampleRate int, timePos float64) (int, []byte, error) {
	switch enc.forFrame(index) {
	case EncodingRaw:
		data, err := encode.NewPCM().Encode(samples)
		return websocket.BinaryMessage, data, err

	case EncodingBase64:
		pcm, err := encode.NewPCM().Encode(samples)
		if err != nil {
			return 0, nil, err
		}
		data, err := json.Marshal(protocol.Message{
			Type: protocol.TypeAudioFrame,
			Payload: protocol.AudioFrame{
				SampleRate:      sampleRate,
				TimePos:         timePos,
				FilteredRawData: base64.StdEncoding.EncodeToString(pcm),
			},
		})
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal audio_frame: %w", err)
		}
		return websocket.TextMessage, data, nil

	case EncodingWAV:
		encoder, err := encode.NewWAV(sampleRate)
		if err != nil {
			return 0, nil, err
		}
		data, err := encoder.Encode(samples)
		if err != nil {
			return 0, nil, err
		}
		return websocket.BinaryMessage, data, nil

	default:
		return 0, nil, fmt.Errorf("unknown encoding %q", enc)
	}
}
