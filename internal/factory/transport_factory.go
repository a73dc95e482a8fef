package factory

import (
	"github.com/mikey/linkedin-prioritizer/internal/adapters/transport"
	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/ports"
	"go.uber.org/zap"
)

// TransportFactory creates the extension-facing transport
type TransportFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	broker *transport.Broker
}

// NewTransportFactory creates a new transport factory
func NewTransportFactory(cfg *config.Config, logger *zap.Logger, broker *transport.Broker) *TransportFactory {
	return &TransportFactory{
		cfg:    cfg,
		logger: logger,
		broker: broker,
	}
}

// CreateTransport creates the HTTP transport. page and automation may be nil
// when no browser page is driven by this process.
func (f *TransportFactory) CreateTransport(
	prioritizer ports.Prioritizer,
	page ports.PageControl,
	automation ports.Automation,
) (ports.MessageTransport, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}

	return transport.NewHTTPTransport(prioritizer, page, automation, f.broker, f.logger, serverCfg.ListenAddress), nil
}
