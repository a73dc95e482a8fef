package factory

import (
	"context"

	"github.com/mikey/linkedin-prioritizer/internal/classifier"
	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/delegate"
	"go.uber.org/zap"
)

// ClassifierFactory creates the rule engine and the delegated classifier
type ClassifierFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	clients *PriorityClientFactory
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, clients *PriorityClientFactory) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:     cfg,
		logger:  logger,
		clients: clients,
	}
}

// CreateRuleClassifier creates the rule-based classifier from the classifier settings
func (f *ClassifierFactory) CreateRuleClassifier() *classifier.Classifier {
	classifierCfg := f.cfg.GetClassifier()
	if len(classifierCfg.ImportantContacts) > 0 {
		f.logger.Info("Loaded important contacts from configuration",
			zap.Int("count", len(classifierCfg.ImportantContacts)))
	}
	return classifier.New(classifier.Options{
		Mode:              classifierCfg.Mode,
		IdentityLength:    classifierCfg.IdentityLength,
		ImportantContacts: classifierCfg.ImportantContacts,
		RecencyHints:      classifierCfg.RecencyHints,
	}, f.logger)
}

// CreateDelegateClassifier creates the delegated classifier and its client.
// Both are nil when delegation is disabled.
func (f *ClassifierFactory) CreateDelegateClassifier(ctx context.Context) (*delegate.Classifier, core.PriorityClient, error) {
	delegateCfg, err := f.cfg.GetDelegate()
	if err != nil {
		return nil, nil, err
	}
	if !delegateCfg.Enabled {
		f.logger.Info("Delegated classification disabled")
		return nil, nil, nil
	}

	client, err := f.clients.CreatePriorityClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	f.logger.Info("Delegated classification enabled",
		zap.String("provider", delegateCfg.Provider),
		zap.Duration("delay", delegateCfg.Delay))

	queue := delegate.NewQueue(delegateCfg.Delay, nil, f.logger)
	return delegate.NewClassifier(client, queue, delegateCfg.Keywords, f.cfg.GetClassifier().IdentityLength, f.logger), client, nil
}
