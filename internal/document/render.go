package document

import (
	"fmt"
	"image"
	"math"

	"github.com/gabriel-vasile/mimetype"
	fitz "github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

const (
	// DefaultDPI is the rasterization resolution used when none is configured.
	DefaultDPI = 150
	// DefaultMaxPixels bounds the rendered page area, roughly 64MiB of RGBA.
	DefaultMaxPixels = 16 << 20

	pointsPerInch = 72.0
	minDPI        = 1.0
)

// acceptedTypes lists the media types handed to MuPDF.
var acceptedTypes = []string{"application/pdf"}

// Renderer rasterizes the first page of a document with MuPDF.
type Renderer struct {
	dpi       float64
	maxPixels int
	logger    *zap.Logger
}

func NewRenderer(dpi int, logger *zap.Logger) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Renderer{dpi: float64(dpi), maxPixels: DefaultMaxPixels, logger: logger}
}

// WithMaxPixels sets the largest page area, in pixels, the renderer produces.
// Pages that would exceed it are rendered at a lower DPI.
func (r *Renderer) WithMaxPixels(limit int) *Renderer {
	if limit > 0 {
		r.maxPixels = limit
	}
	return r
}

// Render returns page 1 of the document as an image. Any further pages are
// ignored. The MuPDF document is closed before returning on every path.
func (r *Renderer) Render(data []byte) (img image.Image, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrRender)
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), acceptedTypes...) {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrRender, detected.String())
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s content: %w", ErrRender, detected.String(), err)
	}
	defer doc.Close()

	// go-fitz panics on some page sizes instead of returning an error.
	defer func() {
		if rec := recover(); rec != nil {
			img = nil
			err = fmt.Errorf("%w: rasterizer panic: %v", ErrRender, rec)
		}
	}()

	pages := doc.NumPage()
	if pages < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrRender)
	}

	// go-fitz pages are 0-based.
	bound, err := doc.Bound(0)
	if err != nil {
		return nil, fmt.Errorf("%w: measure first page: %w", ErrRender, err)
	}
	if bound.Empty() {
		return nil, fmt.Errorf("%w: first page has no area", ErrRender)
	}

	dpi, err := r.fitDPI(bound)
	if err != nil {
		return nil, err
	}

	rgba, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: rasterize first page: %w", ErrRender, err)
	}

	bounds := rgba.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: first page rendered empty", ErrRender)
	}

	r.logger.Debug("rendered first page",
		zap.String("media_type", detected.String()),
		zap.Int("pages", pages),
		zap.Int("pages_ignored", pages-1),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
		zap.Float64("dpi", dpi),
		zap.Bool("downscaled", dpi < r.dpi),
	)

	return rgba, nil
}

// fitDPI returns the configured DPI, lowered so the page stays within maxPixels.
// bound is in points.
func (r *Renderer) fitDPI(bound image.Rectangle) (float64, error) {
	width := math.Ceil(float64(bound.Dx()) * r.dpi / pointsPerInch)
	height := math.Ceil(float64(bound.Dy()) * r.dpi / pointsPerInch)

	area := width * height
	if area <= float64(r.maxPixels) {
		return r.dpi, nil
	}

	// Floor keeps the rounded-up pixel size inside the budget.
	dpi := math.Floor(r.dpi*math.Sqrt(float64(r.maxPixels)/area)*100) / 100
	if dpi < minDPI {
		return 0, fmt.Errorf("%w: first page %dx%dpt is too large to render", ErrRender, bound.Dx(), bound.Dy())
	}

	return dpi, nil
}
