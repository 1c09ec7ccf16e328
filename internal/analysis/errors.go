package analysis

import (
	"errors"
	"fmt"

	"github.com/spigell/resume-analyzer/internal/ai"
	"github.com/spigell/resume-analyzer/internal/document"
	"github.com/spigell/resume-analyzer/internal/prompts"
)

// ErrInvalidRequest matches every *ValidationError.
var ErrInvalidRequest = errors.New("invalid request")

// ValidationError is a malformed request. Message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

func missingField(name string) error {
	return &ValidationError{Message: name + " is required"}
}

// Stage identifies where in the pipeline a failure happened.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageMode      Stage = "mode"
	StageDecode    Stage = "decode"
	StageRender    Stage = "render"
	StageEncode    Stage = "encode"
	StagePrompt    Stage = "prompt"
	StageInference Stage = "inference"
)

// Error is returned by Pipeline.Analyze for every failure.
type Error struct {
	Stage Stage
	Mode  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Category separates bad input from processing failures.
type Category int

const (
	CategoryProcessing Category = iota
	CategoryValidation
)

func (c Category) String() string {
	if c == CategoryValidation {
		return "validation"
	}
	return "processing"
}

// Classify reports whether err was caused by the request itself. Unknown
// errors are processing failures.
func Classify(err error) Category {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, prompts.ErrUnknownMode),
		errors.Is(err, document.ErrDecode):
		return CategoryValidation
	default:
		return CategoryProcessing
	}
}

// Public messages. They are part of the API contract and must stay stable.
const (
	MessageInvalidMode = "Invalid analysis type"
	MessageDecode      = "resume is not valid base64"
	MessageRender      = "failed to render resume document"
	MessageEncode      = "failed to encode resume image"
	MessageInference   = "analysis model request failed"
	MessageInternal    = "internal error"
)

// Message returns the client-facing text for err. Wrapped causes are never
// exposed.
func Message(err error) string {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.Is(err, prompts.ErrUnknownMode):
		return MessageInvalidMode
	case errors.Is(err, document.ErrDecode):
		return MessageDecode
	case errors.Is(err, document.ErrRender):
		return MessageRender
	case errors.Is(err, document.ErrEncode):
		return MessageEncode
	case errors.Is(err, ai.ErrInference):
		return MessageInference
	default:
		return MessageInternal
	}
}

// NewValidationError builds a request validation failure for callers outside
// the pipeline, such as a transport that cannot parse the body.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}
