package factory

import (
	"context"
	"fmt"

	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/utils"
	"go.uber.org/zap"
)

// PriorityClientFactory creates the delegated classification client
type PriorityClientFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewPriorityClientFactory creates a new priority client factory
func NewPriorityClientFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *PriorityClientFactory {
	return &PriorityClientFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreatePriorityClient creates a client for the configured delegate provider
func (f *PriorityClientFactory) CreatePriorityClient(ctx context.Context) (core.PriorityClient, error) {
	delegateCfg, err := f.cfg.GetDelegate()
	if err != nil {
		return nil, err
	}

	switch delegateCfg.Provider {
	case "", "endpoint":
		return NewEndpointFactory(f.cfg, f.logger, f.textProcessor).CreatePriorityClient(delegateCfg)
	case "bedrock":
		return NewBedrockFactory(f.cfg, f.logger, f.textProcessor).CreatePriorityClient(ctx, delegateCfg)
	case "gemini":
		return NewGeminiFactory(f.cfg, f.logger, f.textProcessor).CreatePriorityClient(ctx, delegateCfg)
	case "openai":
		return NewOpenAIFactory(f.cfg, f.logger, f.textProcessor).CreatePriorityClient(delegateCfg)
	default:
		return nil, fmt.Errorf("unsupported delegate provider: %s", delegateCfg.Provider)
	}
}
