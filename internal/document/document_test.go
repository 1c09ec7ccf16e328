package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/spigell/resume-analyzer/internal/document/documenttest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	raw := []byte("%PDF-1.4 fake")
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "plain base64", input: encoded, want: raw},
		{name: "surrounding whitespace", input: "\n  " + encoded + "  \n", want: raw},
		{name: "data url", input: "data:application/pdf;base64," + encoded, want: raw},
		{name: "empty", input: "   ", wantErr: true},
		{name: "not base64", input: "this is ### not base64", wantErr: true},
		{name: "data url without payload", input: "data:application/pdf;base64,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrDecode) {
					t.Fatalf("expected ErrDecode, got %v", err)
				}
				if got != nil {
					t.Fatalf("expected no bytes on failure, got %d", len(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRendererReturnsFirstPageOnly(t *testing.T) {
	t.Parallel()

	for _, pages := range []int{1, 2, 5} {
		renderer := NewRenderer(72, zap.NewNop())

		img, err := renderer.Render(documenttest.PDF(pages))
		if err != nil {
			t.Fatalf("pages=%d: unexpected error: %v", pages, err)
		}

		bounds := img.Bounds()
		if bounds.Dx() <= bounds.Dy() {
			t.Fatalf("pages=%d: expected landscape first page, got %dx%d", pages, bounds.Dx(), bounds.Dy())
		}

		center := color.GrayModel.Convert(img.At(bounds.Min.X+bounds.Dx()/2, bounds.Min.Y+bounds.Dy()/2)).(color.Gray)
		if center.Y > 64 {
			t.Fatalf("pages=%d: expected dark first page, got gray level %d", pages, center.Y)
		}
	}
}

func TestRendererLogsIgnoredPages(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	renderer := NewRenderer(0, zap.New(core))

	if _, err := renderer.Render(documenttest.PDF(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("rendered first page").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 render log entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["pages"] != int64(3) || ctx["pages_ignored"] != int64(2) {
		t.Fatalf("unexpected page fields: %v", ctx)
	}
	if ctx["media_type"] != "application/pdf" {
		t.Fatalf("expected application/pdf media type, got %v", ctx["media_type"])
	}
}

func TestRendererRejectsGarbage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := pngEncode(&buf); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	renderer := NewRenderer(DefaultDPI, nil)

	tests := []struct {
		name    string
		data    []byte
		message string
	}{
		{name: "empty", data: nil, message: "empty document"},
		{name: "random", data: []byte{0x13, 0x37, 0x00, 0xff, 0x42, 0x10, 0x99, 0x01, 0x02, 0x03}, message: "unsupported content type"},
		{name: "png image", data: buf.Bytes(), message: "unsupported content type image/png"},
		{name: "broken", data: []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog"), message: "open application/pdf content"},
		{name: "no pages", data: documenttest.EmptyPDF(), message: "document has no pages"},
	}

	for _, tt := range tests {
		img, err := renderer.Render(tt.data)
		if !errors.Is(err, ErrRender) {
			t.Fatalf("%s: expected ErrRender, got %v", tt.name, err)
		}
		if !strings.Contains(err.Error(), tt.message) {
			t.Fatalf("%s: expected %q in error, got %v", tt.name, tt.message, err)
		}
		if img != nil {
			t.Fatalf("%s: expected no image on failure", tt.name)
		}
	}
}

func pngEncode(w *bytes.Buffer) error {
	return png.Encode(w, image.NewGray(image.Rect(0, 0, 10, 10)))
}

func TestRendererDownscalesOversizedPages(t *testing.T) {
	t.Parallel()

	// 14400pt is the largest page a PDF may declare, 30000px square at 150 DPI.
	img, err := NewRenderer(DefaultDPI, nil).Render(documenttest.SizedPDF(14400, 14400))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bounds := img.Bounds()
	if area := bounds.Dx() * bounds.Dy(); area > DefaultMaxPixels+bounds.Dx()+bounds.Dy()+1 {
		t.Fatalf("expected at most %d pixels, got %dx%d", DefaultMaxPixels, bounds.Dx(), bounds.Dy())
	}
	if bounds.Dx() < 1000 {
		t.Fatalf("expected a usable image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRendererLogsDownscaledDPI(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	renderer := NewRenderer(144, zap.New(core)).WithMaxPixels(100 * 50)

	img, err := renderer.Render(documenttest.PDF(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 200x100pt at 144 DPI is 400x200px, four times the budget.
	bounds := img.Bounds()
	if bounds.Dx() > 101 || bounds.Dy() > 51 {
		t.Fatalf("expected about 100x50, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	entries := observed.FilterMessage("rendered first page").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 render log entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["downscaled"] != true {
		t.Fatalf("expected downscaled render, got %v", ctx)
	}
	if dpi, _ := ctx["dpi"].(float64); math.Abs(dpi-36) > 0.01 {
		t.Fatalf("unexpected dpi %v", ctx["dpi"])
	}
}

func TestRendererRejectsPagesBeyondBudget(t *testing.T) {
	t.Parallel()

	img, err := NewRenderer(DefaultDPI, nil).WithMaxPixels(100).Render(documenttest.SizedPDF(14400, 14400))
	if !errors.Is(err, ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
	if img != nil {
		t.Fatalf("expected no image on failure")
	}
}

func TestFitDPI(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(150, nil).WithMaxPixels(2000 * 2000)

	tests := []struct {
		name  string
		bound image.Rectangle
		want  float64
	}{
		{name: "letter fits", bound: image.Rect(0, 0, 612, 792), want: 150},
		{name: "exactly at budget", bound: image.Rect(0, 0, 960, 960), want: 150},
		{name: "twice the side", bound: image.Rect(0, 0, 1920, 1920), want: 75},
		{name: "largest pdf page", bound: image.Rect(0, 0, 14400, 14400), want: 10},
	}

	for _, tt := range tests {
		got, err := renderer.fitDPI(tt.bound)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if math.Abs(got-tt.want) > 0.011 {
			t.Fatalf("%s: expected dpi %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestEncoderRoundTrip(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 12), B: 128, A: 255})
		}
	}

	payload, err := NewEncoder(DefaultJPEGQuality).Encode(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.MediaType != MediaTypeJPEG {
		t.Fatalf("expected %s, got %s", MediaTypeJPEG, payload.MediaType)
	}

	data, err := payload.Bytes()
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("payload is not a jpeg: %v", err)
	}

	if decoded.Bounds().Dx() != 40 || decoded.Bounds().Dy() != 20 {
		t.Fatalf("unexpected decoded size %v", decoded.Bounds())
	}
}

func TestEncoderIsDeterministic(t *testing.T) {
	t.Parallel()

	src := image.NewGray(image.Rect(0, 0, 16, 16))
	enc := NewEncoder(500)

	first, err := enc.Encode(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := enc.Encode(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("expected identical payloads for identical input")
	}
}

func TestEncoderRejectsEmptyImages(t *testing.T) {
	t.Parallel()

	enc := NewEncoder(DefaultJPEGQuality)

	if _, err := enc.Encode(nil); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode for nil image, got %v", err)
	}

	if _, err := enc.Encode(image.NewRGBA(image.Rectangle{})); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode for empty image, got %v", err)
	}
}

func TestRenderThenEncode(t *testing.T) {
	t.Parallel()

	img, err := NewRenderer(DefaultDPI, nil).Render(documenttest.PDF(2))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	payload, err := NewEncoder(DefaultJPEGQuality).Encode(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	data, err := payload.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}

	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("rendered payload is not a jpeg: %v", err)
	}
}
