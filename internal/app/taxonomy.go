package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/casey/mailsweep/internal/config"
	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/taxonomy"
)

var taxonomyDays int

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Classify unlabeled messages into sender categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(cfg *config.Config, store core.MessageRepository) error {
			defer store.Close()
			ctx := context.Background()

			messages, err := loadMessages(ctx, cfg, store, taxonomyDays)
			if err != nil {
				return err
			}

			userDomain := cfg.GetString("smart_delete.user_domain")
			result := taxonomy.GetUnlabeledTaxonomy(messages, userDomain)
			fmt.Printf("Unlabeled messages: %d of %d cached\n\n", result.TotalUnlabeled, len(messages))

			categories := make([]string, 0, len(result.Categories))
			for category := range result.Categories {
				categories = append(categories, category)
			}
			sort.SliceStable(categories, func(i, j int) bool {
				return result.Categories[categories[i]].Count > result.Categories[categories[j]].Count
			})

			for _, category := range categories {
				stats := result.Categories[category]
				fmt.Printf("%s: %d messages, %d senders, %.0f%% read\n",
					category, stats.Count, stats.UniqueSenders, stats.ReadRate)
				if stats.Description != "" {
					fmt.Printf("  %s\n", stats.Description)
				}
				for _, action := range stats.Actions {
					fmt.Printf("  - %s\n", action)
				}
				for _, sender := range stats.TopSenders {
					fmt.Printf("    %s\n", sender)
				}
				fmt.Println()
			}
			return nil
		})
	},
}

func init() {
	taxonomyCmd.Flags().IntVar(&taxonomyDays, "days", 0, "limit analysis to the last N days (0 = all cached)")
	rootCmd.AddCommand(taxonomyCmd)
}
