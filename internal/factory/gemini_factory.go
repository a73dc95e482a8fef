package factory

import (
	"context"

	"github.com/mikey/linkedin-prioritizer/internal/adapters/gemini"
	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/utils"
	"go.uber.org/zap"
)

// GeminiFactory creates Gemini priority clients
type GeminiFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiFactory creates a new Gemini factory
func NewGeminiFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *GeminiFactory {
	return &GeminiFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreatePriorityClient creates a Gemini priority client. The caller closes it.
func (f *GeminiFactory) CreatePriorityClient(ctx context.Context, delegateCfg config.DelegateConfig) (core.PriorityClient, error) {
	geminiCfg := f.cfg.GetGemini()
	client, err := gemini.NewGeminiClient(
		ctx,
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		delegateCfg.MaxPreviewSize,
		f.logger,
		f.textProcessor,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
