package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/casey/mailsweep/internal/config"
	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/factory"
)

var (
	fetchDays  int
	fetchForce bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch message metadata and labels from Gmail into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(
			cfg *config.Config,
			logger *zap.Logger,
			store core.MessageRepository,
			provider core.MailProvider,
			cacheFactory *factory.CacheFactory,
		) error {
			defer store.Close()
			ctx := context.Background()

			days := fetchDays
			if days == 0 {
				days = cfg.GetInt("gmail.fetch_days")
			}

			if !fetchForce {
				maxAge, err := cacheFactory.GetCacheMaxAge()
				if err != nil {
					return fmt.Errorf("invalid cache.max_age: %w", err)
				}
				fresh, err := store.IsFresh(ctx, maxAge)
				if err != nil {
					return err
				}
				if fresh {
					count, err := store.MessageCount(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("Cache is fresh (%d messages). Use --force to refetch.\n", count)
					return nil
				}
			}

			fmt.Printf("Fetching messages from the last %d days...\n", days)
			messages, err := provider.FetchMessages(ctx, days, func(done, total int) {
				if done%100 == 0 || done == total {
					fmt.Printf("\r  %d/%d messages", done, total)
				}
			})
			if err != nil {
				return fmt.Errorf("fetch failed: %w", err)
			}
			fmt.Println()

			saved, err := store.SaveMessages(ctx, messages)
			if err != nil {
				return fmt.Errorf("failed to cache messages: %w", err)
			}

			labelList, err := provider.FetchLabels(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch labels: %w", err)
			}
			if err := store.SaveLabels(ctx, labelList); err != nil {
				return fmt.Errorf("failed to cache labels: %w", err)
			}

			logger.Info("Fetch complete",
				zap.Int("messages", saved), zap.Int("labels", len(labelList)))
			fmt.Printf("Cached %d messages and %d labels.\n", saved, len(labelList))
			return nil
		})
	},
}

func init() {
	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "how many days back to fetch (0 = config default)")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "refetch even when the cache is fresh")
	rootCmd.AddCommand(fetchCmd)
}
