// ABOUTME: Error taxonomy for the playback session
// ABOUTME: Sentinels for chunk-local and call-local failures
package playback

import "github.com/pkg/errors"

var (
	// ErrInvalidInput is returned to the caller for unsupported chunk shapes
	// and malformed base64.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDecodeFailure marks a container the decoder rejected.
	ErrDecodeFailure = errors.New("decode failure")

	// ErrUnrecognizedFormat marks a chunk too short to classify.
	ErrUnrecognizedFormat = errors.New("unrecognized format")

	// ErrPlatformPolicyDenied marks a resume or suspend the device refused.
	ErrPlatformPolicyDenied = errors.New("platform policy denied")

	// ErrQueueFull marks a buffer dropped because too much audio is already scheduled.
	ErrQueueFull = errors.New("schedule queue full")

	// ErrClosed marks work attempted on a closed output.
	ErrClosed = errors.New("output closed")
)

// Is reports whether err was caused by target
func Is(err, target error) bool {
	return errors.Cause(err) == target
}
