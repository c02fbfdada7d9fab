package smartdelete

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/casey/mailsweep/internal/core"
)

// maxReportedErrors caps the error detail returned to callers; TotalErrors
// still reports the true count.
const maxReportedErrors = 10

// ErrConfirmRequired is returned when permanent deletion is attempted
// without explicit confirmation.
var ErrConfirmRequired = errors.New("permanent deletion requires confirmation")

// Executor applies a chosen candidate set via the mail provider and mirrors
// the result into the local store.
type Executor struct {
	provider core.MailProvider
	store    core.MessageRepository
	logger   *zap.Logger
}

// NewExecutor creates a deletion executor.
func NewExecutor(provider core.MailProvider, store core.MessageRepository, logger *zap.Logger) *Executor {
	return &Executor{provider: provider, store: store, logger: logger}
}

// Delete moves messages to the trash. Trash rather than permanent delete is
// the default so a bad call stays recoverable. In dry-run mode no provider
// call is made but counting is identical to a real run.
func (x *Executor) Delete(ctx context.Context, messageIDs []string, dryRun bool, progress core.ProgressFunc) core.DeleteResult {
	return x.run(ctx, messageIDs, dryRun, false, progress)
}

// PermanentlyDelete removes messages beyond recovery. It refuses to act
// unless confirm is set, except in dry-run mode.
func (x *Executor) PermanentlyDelete(ctx context.Context, messageIDs []string, dryRun, confirm bool, progress core.ProgressFunc) (core.DeleteResult, error) {
	if !dryRun && !confirm {
		return core.DeleteResult{DryRun: dryRun, Permanent: true}, ErrConfirmRequired
	}
	return x.run(ctx, messageIDs, dryRun, true, progress), nil
}

func (x *Executor) run(ctx context.Context, messageIDs []string, dryRun, permanent bool, progress core.ProgressFunc) core.DeleteResult {
	result := core.DeleteResult{
		Success:   true,
		DryRun:    dryRun,
		Permanent: permanent,
		Errors:    []core.DeleteError{},
	}
	if len(messageIDs) == 0 {
		return result
	}

	failedIDs := map[string]struct{}{}
	var allErrors []core.DeleteError

	for i, id := range messageIDs {
		if dryRun {
			result.Deleted++
		} else {
			var err error
			if permanent {
				err = x.provider.Delete(ctx, id)
			} else {
				err = x.provider.Trash(ctx, id)
			}
			if err != nil {
				result.Failed++
				failedIDs[id] = struct{}{}
				allErrors = append(allErrors, core.DeleteError{MessageID: id, Err: err.Error()})
				if x.logger != nil {
					x.logger.Warn("Failed to delete message",
						zap.String("message_id", id),
						zap.Bool("permanent", permanent),
						zap.Error(err))
				}
			} else {
				result.Deleted++
			}
		}
		if progress != nil {
			progress(i+1, len(messageIDs))
		}
	}

	// Mirror successful deletions into the local store so stale rows
	// don't resurface as candidates.
	if !dryRun && result.Deleted > 0 && x.store != nil {
		succeeded := make([]string, 0, result.Deleted)
		for _, id := range messageIDs {
			if _, failed := failedIDs[id]; !failed {
				succeeded = append(succeeded, id)
			}
		}
		if _, err := x.store.DeleteMessages(ctx, succeeded); err != nil && x.logger != nil {
			x.logger.Error("Failed to mirror deletions into store", zap.Error(err))
		}
	}

	result.Success = result.Failed == 0
	result.TotalErrors = len(allErrors)
	if len(allErrors) > maxReportedErrors {
		allErrors = allErrors[:maxReportedErrors]
	}
	result.Errors = allErrors

	if x.logger != nil {
		x.logger.Info("Deletion run complete",
			zap.Int("deleted", result.Deleted),
			zap.Int("failed", result.Failed),
			zap.Bool("dry_run", dryRun),
			zap.Bool("permanent", permanent))
	}
	return result
}

// RestoreFromTrash moves messages back out of the trash.
func (x *Executor) RestoreFromTrash(ctx context.Context, messageIDs []string) core.DeleteResult {
	result := core.DeleteResult{Success: true, Errors: []core.DeleteError{}}

	for _, id := range messageIDs {
		if err := x.provider.Untrash(ctx, id); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, core.DeleteError{MessageID: id, Err: err.Error()})
			continue
		}
		result.Deleted++
	}

	result.Success = result.Failed == 0
	result.TotalErrors = len(result.Errors)
	if len(result.Errors) > maxReportedErrors {
		result.Errors = result.Errors[:maxReportedErrors]
	}
	return result
}

// EmptyTrash permanently removes everything in the trash. Dry-run reports
// intent without any provider call.
func (x *Executor) EmptyTrash(ctx context.Context, dryRun bool) (int64, error) {
	if dryRun {
		return 0, nil
	}
	count, err := x.provider.EmptyTrash(ctx)
	if err != nil {
		return 0, err
	}
	if x.logger != nil {
		x.logger.Info("Emptied trash", zap.Int64("approximate_deleted", count))
	}
	return count, nil
}
