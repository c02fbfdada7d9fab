package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casey/mailsweep/internal/analytics"
	"github.com/casey/mailsweep/internal/config"
	"github.com/casey/mailsweep/internal/core"
	mslabels "github.com/casey/mailsweep/internal/labels"
)

var (
	labelsRedundantMin int
	labelsFull         bool
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Audit label usage and show optimization recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(cfg *config.Config, store core.MessageRepository) error {
			defer store.Close()
			ctx := context.Background()

			messages, err := loadMessages(ctx, cfg, store, 0)
			if err != nil {
				return err
			}
			nameMap, err := store.LabelNameMap(ctx)
			if err != nil {
				return err
			}
			all, err := store.Labels(ctx)
			if err != nil {
				return err
			}

			health := analytics.LabelHealthSummary(messages, all, nameMap)
			fmt.Printf("Label health: %d user labels, %d working well, %d need attention, %d redundant pairs, %d abandoned\n",
				health.TotalUserLabels, health.WorkingWell, health.NeedsAttention, health.RedundantPairs, health.Abandoned)
			fmt.Printf("Inbox read rate: %.1f%%\n\n", health.InboxReadRate)

			if recs := analytics.LabelRecommendations(messages, all, nameMap); len(recs) > 0 {
				fmt.Println("Recommendations:")
				for _, rec := range recs {
					fmt.Printf("  [%s] %s: %s\n          %s\n", rec.Action, rec.Label, rec.Reason, rec.Detail)
				}
				fmt.Println()
			}

			unlabeled := mslabels.FilterUnlabeled(messages)
			fmt.Printf("Unlabeled: %d of %d messages\n\n", len(unlabeled), len(messages))

			fmt.Println("Label usage:")
			for _, usage := range analytics.LabelStats(messages, nameMap) {
				fmt.Printf("  %5d  %s\n", usage.Count, usage.Name)
			}

			if labelsFull {
				fmt.Println("\nCoherence:")
				for _, c := range analytics.CoherenceScores(messages, nameMap) {
					fmt.Printf("  %3d  %-24s %s (%d senders, top %s at %.1f%%)\n",
						c.Score, c.Name, c.Assessment, c.UniqueSenders, c.TopSender, c.TopSenderPct)
				}

				report := analytics.EngagementEfficiency(messages, nameMap)
				fmt.Printf("\nEngagement vs inbox average (%.1f%%):\n", report.InboxReadRate)
				for _, eng := range report.Labels {
					fmt.Printf("  %5.1f%%  %-24s %s\n", eng.ReadRate, eng.Name, eng.Status)
				}

				if overlaps := analytics.LabelOverlaps(messages, nameMap, 80); len(overlaps) > 0 {
					fmt.Println("\nOverlapping label pairs:")
					for _, overlap := range overlaps {
						fmt.Printf("  %s\n", overlap.Detail)
					}
				}
			}

			redundant := analytics.RedundantLabels(messages, all, labelsRedundantMin)
			if len(redundant) > 0 {
				fmt.Printf("\nLabels used on fewer than %d messages (merge or delete candidates):\n", labelsRedundantMin)
				for _, usage := range redundant {
					fmt.Printf("  %5d  %s\n", usage.Count, usage.Name)
				}
			}

			if suggestions := analytics.SuggestLabels(messages, 5, 30); len(suggestions) > 0 {
				fmt.Println("\nSuggested labels for unlabeled senders:")
				for _, s := range suggestions {
					fmt.Printf("  %-16s %s (%d messages, %.1f%% read)\n", s.Label, s.Domain, s.Count, s.ReadRate)
				}
			}
			return nil
		})
	},
}

func init() {
	labelsCmd.Flags().IntVar(&labelsRedundantMin, "redundant-below", 3, "flag labels used on fewer than this many messages")
	labelsCmd.Flags().BoolVar(&labelsFull, "full", false, "show coherence, engagement, and overlap analysis")
	rootCmd.AddCommand(labelsCmd)
}
