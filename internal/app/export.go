package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/casey/mailsweep/internal/config"
	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/smartdelete"
)

var (
	exportOutput   string
	exportDays     int
	exportMinScore int
)

type exportCandidate struct {
	MessageID     string    `json:"message_id"`
	Sender        string    `json:"sender"`
	Subject       string    `json:"subject"`
	Date          time.Time `json:"date"`
	Score         int       `json:"score"`
	Tier          string    `json:"tier"`
	HasExceptions bool      `json:"has_exceptions"`
	Exceptions    []string  `json:"exceptions,omitempty"`
}

type exportFile struct {
	GeneratedAt time.Time         `json:"generated_at"`
	MinScore    int               `json:"min_score"`
	Candidates  []exportCandidate `json:"candidates"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export deletion candidates to a JSON file for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(cfg *config.Config, store core.MessageRepository, finder *smartdelete.Finder) error {
			defer store.Close()
			ctx := context.Background()

			messages, err := loadMessages(ctx, cfg, store, exportDays)
			if err != nil {
				return err
			}

			minScore := exportMinScore
			if minScore == 0 {
				minScore = cfg.GetInt("smart_delete.min_score")
			}
			candidates := finder.FindCandidates(messages, buildUserContext(cfg, messages),
				smartdelete.FindOptions{MinScore: minScore})

			out := exportFile{
				GeneratedAt: time.Now(),
				MinScore:    minScore,
				Candidates:  make([]exportCandidate, 0, len(candidates)),
			}
			for _, c := range candidates {
				exceptions := make([]string, 0, len(c.Exceptions))
				for _, exc := range c.Exceptions {
					exceptions = append(exceptions, fmt.Sprintf("%s: %s", exc.Type, exc.Detail))
				}
				out.Candidates = append(out.Candidates, exportCandidate{
					MessageID:     c.MessageID,
					Sender:        c.Sender,
					Subject:       c.Subject,
					Date:          c.Date,
					Score:         c.Score,
					Tier:          c.Tier.Name,
					HasExceptions: c.HasExceptions,
					Exceptions:    exceptions,
				})
			}

			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()

			encoder := json.NewEncoder(f)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(out); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			fmt.Printf("Exported %d candidates to %s\n", len(out.Candidates), exportOutput)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "candidates.json", "output file path")
	exportCmd.Flags().IntVar(&exportDays, "days", 0, "limit to the last N days of cached mail (0 = all)")
	exportCmd.Flags().IntVar(&exportMinScore, "min-score", 0, "minimum safety score (0 = config default)")
	rootCmd.AddCommand(exportCmd)
}
