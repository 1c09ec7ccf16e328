package prompts

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed templates/describe_fit.md
var describeFitPrompt string

//go:embed templates/percentage_match.md
var percentageMatchPrompt string

// Catalog is a read-only mapping from mode to instruction text. It is built
// once and is safe for concurrent use.
type Catalog struct {
	instructions map[Mode]string
}

var defaultCatalog = mustCatalog()

// Default returns the process-wide catalog built from the embedded templates.
func Default() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a catalog from the embedded templates, failing if any
// supported mode has no instruction.
func NewCatalog() (*Catalog, error) {
	instructions := make(map[Mode]string, len(Modes()))
	for _, mode := range Modes() {
		text := strings.TrimSpace(embedded(mode))
		if text == "" {
			return nil, fmt.Errorf("no instruction for analysis mode %s", mode)
		}
		instructions[mode] = text
	}

	return &Catalog{instructions: instructions}, nil
}

func mustCatalog() *Catalog {
	catalog, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// Lookup returns the instruction text for the mode.
func (c *Catalog) Lookup(mode Mode) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	text, ok := c.instructions[mode]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	return text, nil
}

func embedded(mode Mode) string {
	switch mode {
	case DescribeFit:
		return describeFitPrompt
	case PercentageMatch:
		return percentageMatchPrompt
	default:
		return ""
	}
}
