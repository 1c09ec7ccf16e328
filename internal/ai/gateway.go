package ai

import (
	"context"
	"errors"

	"github.com/spigell/resume-analyzer/internal/document"
)

// ErrInference wraps every failure of the model call, including cancellation
// and deadlines.
var ErrInference = errors.New("inference failed")

// Request is the three-part multimodal request sent to the model.
type Request struct {
	JobDescription string
	Image          document.Payload
	Instruction    string
}

// Part is one element of a Request. Exactly one of Text or Image is set.
type Part struct {
	Text  string
	Image *document.Payload
}

// Parts returns the request elements in the order the model receives them:
// job description, resume image, instruction.
func (r Request) Parts() []Part {
	image := r.Image
	return []Part{
		{Text: r.JobDescription},
		{Image: &image},
		{Text: r.Instruction},
	}
}

type Response struct {
	Text string
}

// Gateway submits a request to a multimodal model in a single call.
type Gateway interface {
	Submit(ctx context.Context, req Request) (Response, error)
}
