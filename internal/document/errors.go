package document

import "errors"

var (
	// ErrDecode reports that the resume field is not usable base64.
	ErrDecode = errors.New("decode document")
	// ErrRender reports that the document could not be rasterized.
	ErrRender = errors.New("render document")
	// ErrEncode reports that the rendered page could not be serialized.
	ErrEncode = errors.New("encode image")
)
