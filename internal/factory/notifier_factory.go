package factory

import (
	"github.com/mikey/linkedin-prioritizer/internal/adapters/notify"
	"github.com/mikey/linkedin-prioritizer/internal/adapters/transport"
	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory creates the listeners of analysis results
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifiers returns the event broker followed by the SMTP alert when enabled
func (f *NotifierFactory) CreateNotifiers(broker *transport.Broker) []core.Notifier {
	notifiers := []core.Notifier{broker}

	notifyCfg := f.cfg.GetNotify()
	if notifyCfg.Enabled {
		notifiers = append(notifiers, notify.NewSMTPNotifier(
			notifyCfg.SMTPAddress,
			notifyCfg.Username,
			notifyCfg.Password,
			notifyCfg.From,
			notifyCfg.To,
			f.logger,
		))
		f.logger.Info("SMTP alerts enabled",
			zap.String("smtp_address", notifyCfg.SMTPAddress),
			zap.Strings("to", notifyCfg.To))
	}
	return notifiers
}
