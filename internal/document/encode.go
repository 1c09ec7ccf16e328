package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
)

const (
	// MediaTypeJPEG tags every payload produced by Encoder.
	MediaTypeJPEG = "image/jpeg"
	// DefaultJPEGQuality is used when the configured quality is out of range.
	DefaultJPEGQuality = 90
)

// Payload is a transport-safe image: base64 text plus its media type.
type Payload struct {
	MediaType string
	Data      string
}

// Bytes decodes the payload back into the raw image bytes.
func (p Payload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", p.MediaType, err)
	}
	return data, nil
}

// Encoder serializes rendered pages to base64 JPEG payloads.
type Encoder struct {
	quality int
}

func NewEncoder(quality int) *Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Encoder{quality: quality}
}

func (e *Encoder) Encode(img image.Image) (Payload, error) {
	if img == nil {
		return Payload{}, fmt.Errorf("%w: no image", ErrEncode)
	}
	if img.Bounds().Empty() {
		return Payload{}, fmt.Errorf("%w: image has empty bounds", ErrEncode)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return Payload{
		MediaType: MediaTypeJPEG,
		Data:      base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
