package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/linkedin-prioritizer/internal/adapters/browser"
	"github.com/mikey/linkedin-prioritizer/internal/automation"
	"github.com/mikey/linkedin-prioritizer/internal/classifier"
	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/content"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/di"
	"github.com/mikey/linkedin-prioritizer/internal/factory"
	"github.com/mikey/linkedin-prioritizer/internal/logging"
	"github.com/mikey/linkedin-prioritizer/internal/ports"
	"github.com/mikey/linkedin-prioritizer/internal/prefs"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.PrioritizerService,
	rules *classifier.Classifier,
	delegation *di.Delegation,
	store core.Store,
	preferences *prefs.Store,
	transports *factory.TransportFactory,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := service.SeedDefaults(ctx); err != nil {
		logger.Warn("Failed to seed default storage values", zap.Error(err))
	}
	service.LoadPreferences(ctx)

	if file := cfg.ConfigFile(); file != "" {
		cfg.Watch(func(e fsnotify.Event) {
			logger.Info("Configuration changed", zap.String("file", e.Name))
			logging.Reload(cfg, logger)
			rules.SetRecencyHints(cfg.GetClassifier().RecencyHints)
		})
	}

	browserCfg, err := cfg.GetBrowser()
	if err != nil {
		return err
	}
	serverCfg, err := cfg.GetServer()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var (
		page ports.PageControl
		auto ports.Automation
	)
	if browserCfg.Enabled {
		p, err := browser.Connect(ctx, browserCfg, cfg.GetClassifier().IdentityLength, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("Failed to close browser", zap.Error(err))
			}
		}()

		controller := content.NewController(p, service, content.Options{
			Mode:     service.Mode(),
			Method:   browserCfg.Method,
			Debounce: browserCfg.Debounce,
		}, logger)
		page = controller
		auto = automation.NewAutomator(store, service.MessageLog(), preferences, controller, logger)

		g.Go(func() error {
			return controller.Run(gctx)
		})
	}

	if serverCfg.Enabled {
		transport, err := transports.CreateTransport(service, page, auto)
		if err != nil {
			return err
		}
		if err := transport.Start(); err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
			defer cancel()
			if err := transport.Stop(shutdownCtx); err != nil {
				logger.Error("Failed to stop transport", zap.Error(err))
			}
			return nil
		})
	}

	if !browserCfg.Enabled && !serverCfg.Enabled {
		logger.Warn("Neither the browser driver nor the server is enabled, nothing to do")
		return nil
	}

	logger.Info("LinkedIn prioritizer started",
		zap.String("mode", string(service.Mode())),
		zap.Bool("browser", browserCfg.Enabled),
		zap.Bool("server", serverCfg.Enabled))

	err = g.Wait()
	logger.Info("Shutting down...")

	// Close any resources that need closing
	if closer, ok := delegation.Client.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close priority client", zap.Error(err))
		}
	}
	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return err
}
