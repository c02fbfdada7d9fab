package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/casey/mailsweep/internal/config"
	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/smartdelete"
)

var (
	deleteDays         int
	deleteMinScore     int
	deleteLimit        int
	deleteExecute      bool
	deleteYes          bool
	deletePermanent    bool
	deleteKeepExcepted bool
	deleteBreakdown    bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Find and delete messages that are safe to remove",
	Long: "Scores every unlabeled cached message and previews deletion candidates.\n" +
		"Nothing is removed unless --execute is given; deletions go to the trash\n" +
		"unless --permanent is also given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(
			cfg *config.Config,
			logger *zap.Logger,
			store core.MessageRepository,
			finder *smartdelete.Finder,
			executor *smartdelete.Executor,
		) error {
			defer store.Close()
			ctx := context.Background()

			messages, err := loadMessages(ctx, cfg, store, deleteDays)
			if err != nil {
				return err
			}
			userCtx := buildUserContext(cfg, messages)

			minScore := deleteMinScore
			if minScore == 0 {
				minScore = cfg.GetInt("smart_delete.min_score")
			}

			candidates := finder.FindCandidates(messages, userCtx, smartdelete.FindOptions{
				MinScore:          minScore,
				IncludeBreakdown:  deleteBreakdown,
				ExcludeExceptions: deleteKeepExcepted,
			})
			if deleteLimit > 0 && len(candidates) > deleteLimit {
				candidates = candidates[:deleteLimit]
			}

			summary := finder.Summary(messages, userCtx)
			fmt.Printf("Cached: %d messages, unlabeled: %d, with exceptions: %d\n",
				summary.TotalMessages, summary.UnlabeledCount, summary.ExceptionsCount)
			for _, tier := range smartdelete.SafetyTiers() {
				fmt.Printf("  %-12s %d\n", tier.Label, summary.TierCounts[tier.Name])
			}

			fmt.Printf("\n%d candidates at score >= %d:\n", len(candidates), minScore)
			for _, c := range candidates {
				marker := " "
				if c.HasExceptions {
					marker = "!"
				}
				fmt.Printf("%s %3d  %-10s  %-30.30s  %.50s\n",
					marker, c.Score, c.Tier.Name, c.Sender, c.Subject)
				if deleteBreakdown && c.Breakdown != nil {
					for _, factor := range c.Breakdown.Factors {
						fmt.Printf("        %+d %s\n", factor.Impact, factor.Factor)
					}
				}
			}

			if !deleteExecute {
				fmt.Println("\nDry run. Re-run with --execute to delete.")
				return nil
			}
			if len(candidates) == 0 {
				return nil
			}

			if !deleteYes && !confirm(fmt.Sprintf("Delete %d messages%s?", len(candidates),
				map[bool]string{true: " PERMANENTLY", false: " (to trash)"}[deletePermanent])) {
				fmt.Println("Aborted.")
				return nil
			}

			ids := make([]string, 0, len(candidates))
			for _, c := range candidates {
				ids = append(ids, c.MessageID)
			}

			var result core.DeleteResult
			if deletePermanent {
				result, err = executor.PermanentlyDelete(ctx, ids, false, true, nil)
				if err != nil {
					return err
				}
			} else {
				result = executor.Delete(ctx, ids, false, nil)
			}

			fmt.Printf("Deleted %d, failed %d.\n", result.Deleted, result.Failed)
			for _, delErr := range result.Errors {
				fmt.Printf("  %s: %s\n", delErr.MessageID, delErr.Err)
			}
			if result.TotalErrors > len(result.Errors) {
				fmt.Printf("  ... and %d more errors\n", result.TotalErrors-len(result.Errors))
			}
			return nil
		})
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Estimate cleanup impact at each score threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(cfg *config.Config, store core.MessageRepository, finder *smartdelete.Finder) error {
			defer store.Close()
			ctx := context.Background()

			messages, err := loadMessages(ctx, cfg, store, deleteDays)
			if err != nil {
				return err
			}
			impact := finder.EstimateCleanupImpact(messages, buildUserContext(cfg, messages))

			fmt.Printf("Unlabeled messages: %d of %d\n\n", impact.UnlabeledCount, impact.TotalMessages)
			for _, threshold := range []int{90, 80, 70, 60, 50} {
				t := impact.ByThreshold[threshold]
				marker := " "
				if threshold == impact.RecommendedThreshold {
					marker = "*"
				}
				fmt.Printf("%s score >= %d: %5d messages (%.1f%%)\n", marker, threshold, t.Count, t.Percentage)
			}
			fmt.Println("\n* recommended threshold")
			return nil
		})
	},
}

var sendersCmd = &cobra.Command{
	Use:   "senders",
	Short: "Recommend senders whose mail can be bulk deleted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(cfg *config.Config, store core.MessageRepository, finder *smartdelete.Finder) error {
			defer store.Close()
			ctx := context.Background()

			messages, err := loadMessages(ctx, cfg, store, deleteDays)
			if err != nil {
				return err
			}
			recs := finder.BulkRecommendations(messages, buildUserContext(cfg, messages),
				smartdelete.DefaultMinSenderCount, smartdelete.DefaultMinAvgScore)

			if len(recs) == 0 {
				fmt.Println("No senders meet the bulk-delete bar.")
				return nil
			}
			for _, rec := range recs {
				fmt.Printf("%5d msgs  avg %.1f (min %d, max %d)  %s\n",
					rec.Count, rec.AvgScore, rec.MinScore, rec.MaxScore, rec.Sender)
			}
			return nil
		})
	},
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	deleteCmd.Flags().IntVar(&deleteDays, "days", 0, "limit to the last N days of cached mail (0 = all)")
	deleteCmd.Flags().IntVar(&deleteMinScore, "min-score", 0, "minimum safety score (0 = config default)")
	deleteCmd.Flags().IntVar(&deleteLimit, "limit", 0, "cap the number of candidates (0 = no cap)")
	deleteCmd.Flags().BoolVar(&deleteExecute, "execute", false, "actually delete instead of previewing")
	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")
	deleteCmd.Flags().BoolVar(&deletePermanent, "permanent", false, "bypass the trash (not recoverable)")
	deleteCmd.Flags().BoolVar(&deleteKeepExcepted, "exclude-exceptions", false, "drop candidates with any detected exception")
	deleteCmd.Flags().BoolVar(&deleteBreakdown, "breakdown", false, "show per-candidate score factors")

	impactCmd.Flags().IntVar(&deleteDays, "days", 0, "limit to the last N days of cached mail (0 = all)")
	sendersCmd.Flags().IntVar(&deleteDays, "days", 0, "limit to the last N days of cached mail (0 = all)")

	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(sendersCmd)
}
