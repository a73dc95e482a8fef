package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/linkedin-prioritizer/internal/adapters/transport"
	"github.com/mikey/linkedin-prioritizer/internal/classifier"
	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/delegate"
	"github.com/mikey/linkedin-prioritizer/internal/factory"
	"github.com/mikey/linkedin-prioritizer/internal/logging"
	"github.com/mikey/linkedin-prioritizer/internal/prefs"
	"github.com/mikey/linkedin-prioritizer/internal/utils"
)

// Delegation carries the optional delegated classifier and its client
type Delegation struct {
	Classifier *delegate.Classifier
	Client     core.PriorityClient
}

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register key-value store and preferences
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.StoreFactory) (core.Store, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(prefs.NewStore); err != nil {
		return nil, err
	}

	// Register event broker and notifiers
	if err := container.Provide(transport.NewBroker); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.NotifierFactory, broker *transport.Broker) []core.Notifier {
		return f.CreateNotifiers(broker)
	}); err != nil {
		return nil, err
	}

	// Register prioritizer service
	if err := container.Provide(newPrioritizerService); err != nil {
		return nil, err
	}

	// Register transport factory
	if err := container.Provide(factory.NewTransportFactory); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers what the daemon and the CLI share: text processing,
// the classifier factories, the rule engine and the optional delegation
func provideCommon(container *dig.Container) error {
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}
	if err := container.Provide(factory.NewPriorityClientFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return err
	}

	// Register rule engine
	if err := container.Provide(func(f *factory.ClassifierFactory) *classifier.Classifier {
		return f.CreateRuleClassifier()
	}); err != nil {
		return err
	}

	// Register delegated classification
	return container.Provide(func(f *factory.ClassifierFactory) (*Delegation, error) {
		c, client, err := f.CreateDelegateClassifier(context.Background())
		if err != nil {
			return nil, err
		}
		return &Delegation{Classifier: c, Client: client}, nil
	})
}

func newPrioritizerService(
	cfg *config.Config,
	rules *classifier.Classifier,
	delegation *Delegation,
	store core.Store,
	preferences *prefs.Store,
	notifiers []core.Notifier,
	logger *zap.Logger,
) *core.PrioritizerService {
	var delegated core.BatchClassifier
	if delegation.Classifier != nil {
		delegated = delegation.Classifier
	}
	return core.NewPrioritizerService(
		rules,
		delegated,
		store,
		preferences,
		notifiers,
		logger,
		cfg.GetClassifier().IdentityLength,
	)
}
