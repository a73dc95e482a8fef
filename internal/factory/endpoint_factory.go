package factory

import (
	"github.com/mikey/linkedin-prioritizer/internal/adapters/endpoint"
	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/utils"
	"go.uber.org/zap"
)

// EndpointFactory creates clients for the HTTP classification service
type EndpointFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewEndpointFactory creates a new endpoint factory
func NewEndpointFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *EndpointFactory {
	return &EndpointFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreatePriorityClient creates an endpoint client
func (f *EndpointFactory) CreatePriorityClient(delegateCfg config.DelegateConfig) (core.PriorityClient, error) {
	url := delegateCfg.URL
	if url == "" {
		url = endpoint.DefaultURL
	}
	return endpoint.NewClient(url, delegateCfg.Timeout, delegateCfg.MaxPreviewSize, f.logger, f.textProcessor), nil
}
