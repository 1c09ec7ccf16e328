package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"github.com/spigell/resume-analyzer/internal/ai"
	"github.com/spigell/resume-analyzer/internal/ai/gemini"
	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/document"
	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/prompts"
	"github.com/spigell/resume-analyzer/internal/secrets"

	"go.uber.org/zap"
)

// bootstrap reads the config and builds the logger every command shares.
func bootstrap() (*Config, *zap.Logger) {
	config, err := getConfig(viper.GetViper())
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	lg, err := logger.New(logger.Options{
		JSON:       config.Log.JSON,
		Debug:      config.Log.Debug,
		File:       config.Log.File,
		MaxSizeMB:  config.Log.MaxSizeMB,
		MaxBackups: config.Log.MaxBackups,
		MaxAgeDays: config.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	lg.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return config, lg
}

// newPipeline wires the document stages, the prompt catalog and the Gemini gateway.
func newPipeline(ctx context.Context, config *Config, lg *zap.Logger) (*analysis.Pipeline, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  config.Gemini.APIKeyFile,
		Value: config.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	gw, err := gemini.NewGateway(ctx, gemini.Config{
		APIKey:       apiKey,
		Model:        config.Gemini.Model,
		Timeout:      config.Gemini.Timeout,
		MaxLogLength: config.Gemini.MaxLogLength,
	}, lg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini gateway: %w", err)
	}

	gwLogger := logger.WithFields(lg, logger.CommonFields(gemini.Provider, gw.Model())...)
	gateway := ai.WithRetry(gw, ai.RetryConfig{
		Attempts:  config.Gemini.MaxAttempts,
		Delay:     config.Gemini.RetryDelay,
		Retryable: gemini.IsTemporary,
	}, gwLogger)

	return analysis.New(analysis.Deps{
		Renderer: document.NewRenderer(config.Render.DPI, lg).WithMaxPixels(config.Render.MaxPixels),
		Encoder:  document.NewEncoder(config.Render.JPEGQuality),
		Catalog:  prompts.Default(),
		Gateway:  gateway,
		Logger:   lg,
	})
}
