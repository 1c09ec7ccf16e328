package analysis

import (
	"github.com/spigell/resume-analyzer/internal/ai"
	"github.com/spigell/resume-analyzer/internal/document"
)

// BuildRequest composes the inference request. It performs no validation;
// every argument has already been checked by the stage that produced it.
func BuildRequest(jobDescription string, payload document.Payload, instruction string) ai.Request {
	return ai.Request{
		JobDescription: jobDescription,
		Image:          payload,
		Instruction:    instruction,
	}
}
