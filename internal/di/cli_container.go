package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/logging"
)

// CLIFlags contains the command line flags of the prioritize CLI
type CLIFlags struct {
	// Classification flags
	Method   string
	Mode     string
	Contacts []string

	// Delegate flags
	Provider       string
	URL            string
	Delay          string
	MaxPreviewSize int

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.ConfigFile()))
			return cfg, nil
		}
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEnvViper()

	if flags.Mode != "" {
		v.Set("classifier.mode", flags.Mode)
	}
	if len(flags.Contacts) > 0 {
		v.Set("classifier.important_contacts", flags.Contacts)
	}

	// Delegation is only built when the ai method was asked for
	v.Set("delegate.enabled", flags.Method == "ai")
	if flags.Provider != "" {
		v.Set("delegate.provider", flags.Provider)
	}
	if flags.URL != "" {
		v.Set("delegate.url", flags.URL)
	}
	if flags.Delay != "" {
		v.Set("delegate.delay", flags.Delay)
	}
	if flags.MaxPreviewSize > 0 {
		v.Set("delegate.max_preview_size", flags.MaxPreviewSize)
	}

	return config.NewFromViper(v)
}
