package document

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURLMarker = ";base64,"

// Decode returns the raw document bytes carried by a base64 resume field.
// A browser-style data URL prefix ("data:application/pdf;base64,") is accepted.
func Decode(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if idx := strings.Index(encoded, dataURLMarker); idx != -1 {
			encoded = encoded[idx+len(dataURLMarker):]
		}
	}

	if encoded == "" {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: decoded document is empty", ErrDecode)
	}

	return data, nil
}
