package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/resume-analyzer/internal/ai"
	"github.com/spigell/resume-analyzer/internal/metrics"
	"github.com/spigell/resume-analyzer/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	// Provider is the name used in logs and metrics.
	Provider = "gemini"

	defaultModel        = "gemini-2.5-flash"
	defaultMaxLogLength = 200
)

// Config carries everything the gateway needs; nothing is read from the
// environment.
type Config struct {
	APIKey string
	Model  string
	// Timeout bounds a single Submit call. Zero leaves it to the caller's context.
	Timeout      time.Duration
	MaxLogLength int
}

// contentModels is the part of the genai client used by the gateway.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gateway sends analysis requests to Gemini.
type Gateway struct {
	models    contentModels
	model     string
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

// NewGateway creates a Gateway configured for the Gemini API backend.
func NewGateway(ctx context.Context, cfg Config, logger *zap.Logger) (*Gateway, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGateway(client.Models, cfg, logger), nil
}

func newGateway(models contentModels, cfg Config, logger *zap.Logger) *Gateway {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gateway{
		models:    models,
		model:     model,
		timeout:   cfg.Timeout,
		maxLogLen: maxLogLen,
		logger:    logger,
	}
}

// Submit sends the job description, resume image and instruction as one
// user turn and returns the model text.
func (g *Gateway) Submit(ctx context.Context, req ai.Request) (ai.Response, error) {
	if g == nil || g.models == nil {
		return ai.Response{}, fmt.Errorf("%w: gemini gateway is not initialized", ai.ErrInference)
	}

	if err := ctx.Err(); err != nil {
		return ai.Response{}, fmt.Errorf("%w: %w", ai.ErrInference, err)
	}

	content, err := buildContent(req)
	if err != nil {
		return ai.Response{}, fmt.Errorf("%w: %w", ai.ErrInference, err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{content}, nil)
	if err != nil {
		metrics.ObserveProvider(Provider, g.model, "error", time.Since(started))
		return ai.Response{}, fmt.Errorf("%w: generate content: %w", ai.ErrInference, err)
	}

	text, err := responseText(resp)
	if err != nil {
		metrics.ObserveProvider(Provider, g.model, "empty", time.Since(started))
		return ai.Response{}, fmt.Errorf("%w: %w", ai.ErrInference, err)
	}
	metrics.ObserveProvider(Provider, g.model, "success", time.Since(started))

	g.logger.Debug("gemini generate content response",
		zap.Duration("duration", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", utils.TruncateForLog(text, g.maxLogLen)),
	)

	return ai.Response{Text: text}, nil
}

func (g *Gateway) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// IsTemporary reports whether err is a Gemini API failure worth retrying.
func IsTemporary(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}

func buildContent(req ai.Request) (*genai.Content, error) {
	parts := make([]*genai.Part, 0, 3)
	for _, part := range req.Parts() {
		if part.Image == nil {
			parts = append(parts, &genai.Part{Text: part.Text})
			continue
		}

		data, err := part.Image.Bytes()
		if err != nil {
			return nil, err
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{
			MIMEType: part.Image.MediaType,
			Data:     data,
		}})
	}

	return &genai.Content{Role: string(genai.RoleUser), Parts: parts}, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned no response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}
		if builder.Len() > 0 {
			break
		}
	}

	output := builder.String()
	if strings.TrimSpace(output) == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
