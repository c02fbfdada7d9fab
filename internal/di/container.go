package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/casey/mailsweep/internal/adapters/gmail"
	"github.com/casey/mailsweep/internal/config"
	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/factory"
	"github.com/casey/mailsweep/internal/logging"
	"github.com/casey/mailsweep/internal/smartdelete"
)

// BuildContainer creates and configures a dependency injection container.
// Constructors run lazily, so commands that never touch Gmail do not
// trigger the OAuth flow. Verbose switches the logger to a debug-level
// console encoder regardless of the configured level.
func BuildContainer(verbose bool) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(cfg *config.Config) (*zap.Logger, error) {
		if verbose {
			return logging.InitConsoleLogger(true, cfg.GetString("logging.format") == "json")
		}
		return logging.InitLogger(cfg)
	}); err != nil {
		return nil, err
	}

	// Register cache factory and message repository
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.MessageRepository, error) {
		return f.CreateMessageRepository()
	}); err != nil {
		return nil, err
	}

	// Register Gmail provider
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.MailProvider, error) {
		srv, err := gmail.NewService(context.Background(),
			cfg.GetString("gmail.credentials_path"),
			cfg.GetString("gmail.token_path"))
		if err != nil {
			return nil, err
		}
		return gmail.NewProvider(srv, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register scoring pipeline
	if err := container.Provide(func(logger *zap.Logger) *smartdelete.Scorer {
		return smartdelete.NewScorer(logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(smartdelete.NewFinder); err != nil {
		return nil, err
	}
	if err := container.Provide(smartdelete.NewExecutor); err != nil {
		return nil, err
	}

	return container, nil
}
