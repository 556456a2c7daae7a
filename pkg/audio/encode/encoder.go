// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for the mono frame encoders
package encode

// Encoder encodes mono 16-bit samples to a wire format
type Encoder interface {
	// Encode converts PCM samples to encoded audio data
	Encode(samples []int16) ([]byte, error)

	// Close releases encoder resources
	Close() error
}
