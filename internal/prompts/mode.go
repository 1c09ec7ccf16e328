package prompts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned for any analysis type outside the supported set.
var ErrUnknownMode = errors.New("unknown analysis mode")

// Mode selects which instruction is sent to the model and therefore the
// shape of the returned assessment.
type Mode int

const (
	// DescribeFit asks for strengths, weaknesses and recommendations.
	DescribeFit Mode = iota + 1
	// PercentageMatch asks for a match percentage and missing keywords.
	PercentageMatch
)

// Wire identifiers accepted in the analysis_type field.
const (
	DescribeFitID     = "tell_me_about_resume"
	PercentageMatchID = "percentage_match"
)

// Modes lists every supported mode in a stable order.
func Modes() []Mode {
	return []Mode{DescribeFit, PercentageMatch}
}

// ParseMode maps a wire identifier to its Mode. It never falls back to a
// default mode.
func ParseMode(id string) (Mode, error) {
	switch strings.TrimSpace(id) {
	case DescribeFitID:
		return DescribeFit, nil
	case PercentageMatchID:
		return PercentageMatch, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, id)
	}
}

// String returns the wire identifier of the mode.
func (m Mode) String() string {
	switch m {
	case DescribeFit:
		return DescribeFitID
	case PercentageMatch:
		return PercentageMatchID
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) Valid() bool {
	switch m {
	case DescribeFit, PercentageMatch:
		return true
	default:
		return false
	}
}
