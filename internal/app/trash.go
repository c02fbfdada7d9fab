package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casey/mailsweep/internal/smartdelete"
)

var emptyTrashYes bool

var restoreCmd = &cobra.Command{
	Use:   "restore <message-id> [message-id...]",
	Short: "Restore messages from the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(executor *smartdelete.Executor) error {
			result := executor.RestoreFromTrash(context.Background(), args)
			fmt.Printf("Restored %d, failed %d.\n", result.Deleted, result.Failed)
			for _, delErr := range result.Errors {
				fmt.Printf("  %s: %s\n", delErr.MessageID, delErr.Err)
			}
			return nil
		})
	},
}

var emptyTrashCmd = &cobra.Command{
	Use:   "empty-trash",
	Short: "Permanently delete everything in the trash",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(executor *smartdelete.Executor) error {
			if !emptyTrashYes && !confirm("Permanently delete everything in the trash?") {
				fmt.Println("Aborted.")
				return nil
			}
			deleted, err := executor.EmptyTrash(context.Background(), false)
			if err != nil {
				return err
			}
			fmt.Printf("Permanently deleted %d messages.\n", deleted)
			return nil
		})
	},
}

func init() {
	emptyTrashCmd.Flags().BoolVar(&emptyTrashYes, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(emptyTrashCmd)
}
