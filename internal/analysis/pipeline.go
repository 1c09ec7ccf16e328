package analysis

import (
	"context"
	"errors"
	"image"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spigell/resume-analyzer/internal/ai"
	"github.com/spigell/resume-analyzer/internal/document"
	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/metrics"
	"github.com/spigell/resume-analyzer/internal/prompts"
	"go.uber.org/zap"
)

type pageRenderer interface {
	Render(data []byte) (image.Image, error)
}

type imageEncoder interface {
	Encode(img image.Image) (document.Payload, error)
}

type instructionCatalog interface {
	Lookup(mode prompts.Mode) (string, error)
}

// Input is the request accepted at the pipeline boundary.
type Input struct {
	JobDescription string `json:"job_description"`
	// Resume is the base64 encoded document.
	Resume       string `json:"resume"`
	AnalysisType string `json:"analysis_type"`
}

// Result is the model text, unmodified.
type Result struct {
	Text string `json:"result"`
}

// Deps are the collaborators of a Pipeline. Renderer, Encoder and Catalog
// default to the production implementations when nil.
type Deps struct {
	Renderer pageRenderer
	Encoder  imageEncoder
	Catalog  instructionCatalog
	Gateway  ai.Gateway
	Logger   *zap.Logger
}

// Pipeline runs decode, render, encode, lookup, build and submit for one
// analysis. It keeps no state between calls and is safe for concurrent use.
type Pipeline struct {
	renderer pageRenderer
	encoder  imageEncoder
	catalog  instructionCatalog
	gateway  ai.Gateway
	logger   *zap.Logger
}

func New(deps Deps) (*Pipeline, error) {
	if deps.Gateway == nil {
		return nil, errors.New("inference gateway is required")
	}

	p := &Pipeline{
		renderer: deps.Renderer,
		encoder:  deps.Encoder,
		catalog:  deps.Catalog,
		gateway:  deps.Gateway,
		logger:   logger.WithFields(deps.Logger),
	}

	if p.renderer == nil {
		p.renderer = document.NewRenderer(document.DefaultDPI, p.logger)
	}
	if p.encoder == nil {
		p.encoder = document.NewEncoder(document.DefaultJPEGQuality)
	}
	if p.catalog == nil {
		p.catalog = prompts.Default()
	}

	return p, nil
}

// Analyze runs the pipeline. Every error is an *Error; use Classify and
// Message to turn it into a response.
func (p *Pipeline) Analyze(ctx context.Context, in Input) (Result, error) {
	started := time.Now()
	log := logger.WithFields(p.logger, logger.AnalysisFields(uuid.NewString(), in.AnalysisType)...)

	res, mode, err := p.run(ctx, in, log)
	if err != nil {
		var stageErr *Error
		stage := Stage("unknown")
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}

		category := Classify(err)
		fields := []zap.Field{
			zap.String(logger.FieldStage, string(stage)),
			zap.String("category", category.String()),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err),
		}
		if category == CategoryValidation {
			log.Warn("analysis rejected", fields...)
		} else {
			log.Error("analysis failed", fields...)
		}

		metrics.IncAnalysis(modeLabel(mode), category.String()+"_error")
		return Result{}, err
	}

	log.Info("analysis completed",
		zap.Duration("duration", time.Since(started)),
		zap.Int("result_length", utf8.RuneCountInString(res.Text)),
	)
	metrics.IncAnalysis(modeLabel(mode), "success")

	return res, nil
}

func (p *Pipeline) run(ctx context.Context, in Input, log *zap.Logger) (Result, prompts.Mode, error) {
	var mode prompts.Mode
	fail := func(stage Stage, err error) (Result, prompts.Mode, error) {
		return Result{}, mode, &Error{Stage: stage, Mode: in.AnalysisType, Err: err}
	}

	if strings.TrimSpace(in.JobDescription) == "" {
		return fail(StageValidate, missingField("job_description"))
	}
	if strings.TrimSpace(in.Resume) == "" {
		return fail(StageValidate, missingField("resume"))
	}

	// The mode is resolved before any document work so that a bad mode never
	// renders and never reaches the gateway.
	mode, err := prompts.ParseMode(in.AnalysisType)
	if err != nil {
		return fail(StageMode, err)
	}

	stageStarted := time.Now()
	data, err := document.Decode(in.Resume)
	metrics.ObserveStage(string(StageDecode), time.Since(stageStarted))
	if err != nil {
		return fail(StageDecode, err)
	}

	stageStarted = time.Now()
	page, err := p.renderer.Render(data)
	metrics.ObserveStage(string(StageRender), time.Since(stageStarted))
	if err != nil {
		return fail(StageRender, err)
	}

	stageStarted = time.Now()
	payload, err := p.encoder.Encode(page)
	metrics.ObserveStage(string(StageEncode), time.Since(stageStarted))
	if err != nil {
		return fail(StageEncode, err)
	}

	instruction, err := p.catalog.Lookup(mode)
	if err != nil {
		return fail(StagePrompt, err)
	}

	req := BuildRequest(in.JobDescription, payload, instruction)

	log.Debug("submitting inference request",
		zap.Int("document_bytes", len(data)),
		zap.Int("image_payload_length", len(payload.Data)),
		zap.Int("instruction_length", utf8.RuneCountInString(instruction)),
	)

	stageStarted = time.Now()
	resp, err := p.gateway.Submit(ctx, req)
	metrics.ObserveStage(string(StageInference), time.Since(stageStarted))
	if err != nil {
		if !errors.Is(err, ai.ErrInference) {
			err = errors.Join(ai.ErrInference, err)
		}
		return fail(StageInference, err)
	}

	return Result{Text: resp.Text}, mode, nil
}

func modeLabel(mode prompts.Mode) string {
	if mode.Valid() {
		return mode.String()
	}
	return "unknown"
}
