// ABOUTME: Analysis stream message type definitions
// ABOUTME: Defines the JSON envelope and payloads exchanged with the feed
package protocol

// Message types
const (
	TypeStartStream = "start_stream"
	TypeAudioFrame  = "audio_frame"
	TypeFinished    = "finished"
	TypeError       = "error"
)

// Message is the top-level wrapper for all text messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// StartStream asks the feed to begin sending frames
type StartStream struct {
	Encoding string `json:"encoding,omitempty"` // "raw", "base64", "wav" or "mixed"
}

// AudioFrame carries one chunk of filtered audio as base64 text
type AudioFrame struct {
	SampleRate      int     `json:"sample_rate"`
	TimePos         float64 `json:"time_pos"` // Seconds since stream start
	FilteredRawData string  `json:"filtered_raw_data"`
}

// Finished marks the end of the stream
type Finished struct {
	Frames int `json:"frames"`
}

// Error reports a feed-side failure
type Error struct {
	Message string `json:"message"`
}
