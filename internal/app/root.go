// Package app wires the CLI commands to the container-built services.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casey/mailsweep/internal/analytics"
	"github.com/casey/mailsweep/internal/config"
	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/di"
)

var rootCmd = &cobra.Command{
	Use:   "mailsweep",
	Short: "Gmail inbox analytics and safe bulk cleanup",
	Long: "mailsweep caches Gmail message metadata locally, classifies senders,\n" +
		"and finds messages that are safe to delete using auditable scoring rules.",
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// invoke builds the container and runs fn with its dependencies injected.
func invoke(fn interface{}) error {
	container, err := di.BuildContainer(verbose)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	return container.Invoke(fn)
}

// loadMessages returns cached messages for the configured window. It does
// not talk to Gmail; run fetch first.
func loadMessages(ctx context.Context, cfg *config.Config, store core.MessageRepository, days int) ([]core.Message, error) {
	messages, err := store.Messages(ctx, days)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("message cache is empty; run `mailsweep fetch` first")
	}
	return messages, nil
}

// buildUserContext assembles scoring signals from config plus engagement
// analytics over the cached messages.
func buildUserContext(cfg *config.Config, messages []core.Message) *core.UserContext {
	minMessages := cfg.GetInt("engagement.min_messages")
	highRate := cfg.GetFloat64("engagement.high_open_rate")
	return &core.UserContext{
		UserDomain:            cfg.GetString("smart_delete.user_domain"),
		ImportantNames:        cfg.GetStringSlice("smart_delete.important_names"),
		HighEngagementSenders: analytics.HighEngagementSenderSet(messages, minMessages, highRate),
	}
}
