package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casey/mailsweep/internal/analytics"
	"github.com/casey/mailsweep/internal/config"
	"github.com/casey/mailsweep/internal/core"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show inbox analytics over the cached messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(cfg *config.Config, store core.MessageRepository) error {
			defer store.Close()
			ctx := context.Background()

			messages, err := loadMessages(ctx, cfg, store, statsDays)
			if err != nil {
				return err
			}

			openRate := analytics.OpenRate(messages)
			fmt.Printf("Messages: %d  (read %d, unread %d, open rate %.1f%%)\n\n",
				openRate.Total, openRate.Read, openRate.Unread, openRate.OpenRate)

			fmt.Println("Top senders:")
			for _, s := range analytics.FrequentSenders(messages, 10) {
				fmt.Printf("  %5d  %s\n", s.Count, s.Sender)
			}

			fmt.Println("\nTop domains:")
			domains := analytics.SenderDomains(messages)
			if len(domains) > 10 {
				domains = domains[:10]
			}
			for _, d := range domains {
				fmt.Printf("  %5d  %s\n", d.Count, d.Domain)
			}

			minMessages := cfg.GetInt("engagement.min_messages")
			lowEngagement := analytics.LowEngagementSenders(messages, minMessages, 10.0)
			if len(lowEngagement) > 0 {
				fmt.Println("\nRarely-read senders (unsubscribe candidates):")
				for i, s := range lowEngagement {
					if i == 10 {
						break
					}
					fmt.Printf("  %5d msgs, %.0f%% read  %s\n", s.Total, s.OpenRate, s.Sender)
				}
			}

			dist := analytics.DayOfWeekDistribution(messages)
			busyDay, busyHour := analytics.TimePatterns(messages).BusiestHour()
			fmt.Printf("\nBusiest: %s around %02d:00  (weekday %d / weekend %d)\n",
				busyDay, busyHour, dist.WeekdayTotal, dist.WeekendTotal)

			oneTime := analytics.OneTimeSenders(messages)
			fmt.Printf("One-time senders: %d\n", len(oneTime))
			return nil
		})
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 0, "limit analysis to the last N days (0 = all cached)")
	rootCmd.AddCommand(statsCmd)
}
