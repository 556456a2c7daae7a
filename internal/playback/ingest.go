// ABOUTME: Chunk normalization at the ingest boundary
// ABOUTME: Resolves owned bytes, views and base64 text into one owned buffer
package playback

import (
	"encoding/base64"

	"github.com/pkg/errors"
)

// OwnedBytes is a buffer handed over to the session; it is used without copying.
type OwnedBytes []byte

// Base64Text is a base64 (standard alphabet) encoded chunk.
type Base64Text string

// View is a window onto a larger buffer that the caller keeps.
type View struct {
	Buf    []byte
	Offset int
	Length int
}

// Normalize resolves any accepted chunk shape to an owned byte slice.
// Plain []byte is treated as OwnedBytes and plain string as Base64Text.
func Normalize(data any) ([]byte, error) {
	switch v := data.(type) {
	case OwnedBytes:
		return []byte(v), nil
	case []byte:
		return v, nil
	case View:
		return v.owned()
	case *View:
		if v == nil {
			return nil, errors.Wrap(ErrInvalidInput, "nil view")
		}
		return v.owned()
	case Base64Text:
		return decodeBase64(string(v))
	case string:
		return decodeBase64(v)
	default:
		return nil, errors.Wrapf(ErrInvalidInput, "unsupported chunk type %T", data)
	}
}

// owned returns the view's bytes, copying unless the view spans the whole buffer
func (v View) owned() ([]byte, error) {
	if v.Offset < 0 || v.Length < 0 || v.Offset+v.Length > len(v.Buf) {
		return nil, errors.Wrapf(ErrInvalidInput, "view [%d:%d] outside buffer of %d bytes",
			v.Offset, v.Offset+v.Length, len(v.Buf))
	}

	if v.Offset == 0 && v.Length == len(v.Buf) {
		return v.Buf, nil
	}

	out := make([]byte, v.Length)
	copy(out, v.Buf[v.Offset:v.Offset+v.Length])
	return out, nil
}

func decodeBase64(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "malformed base64: %v", err)
	}
	return data, nil
}
