package core

import (
	"context"
	"time"
)

// MessageRepository defines the interface for the local message/label store.
type MessageRepository interface {
	// SaveMessages upserts a batch of messages and records the fetch time.
	SaveMessages(ctx context.Context, messages []Message) (int, error)

	// Messages returns cached messages, newest first. sinceDays of 0 means all.
	Messages(ctx context.Context, sinceDays int) ([]Message, error)

	// Message returns a single cached message, or nil when absent.
	Message(ctx context.Context, messageID string) (*Message, error)

	// DeleteMessages removes messages from the store.
	DeleteMessages(ctx context.Context, messageIDs []string) (int, error)

	// SaveLabels replaces the cached label set.
	SaveLabels(ctx context.Context, labels []Label) error

	// Labels returns cached labels ordered by name.
	Labels(ctx context.Context) ([]Label, error)

	// LabelNameMap maps label IDs to human-readable names.
	LabelNameMap(ctx context.Context) (map[string]string, error)

	// IsFresh reports whether the last fetch is within maxAge.
	IsFresh(ctx context.Context, maxAge time.Duration) (bool, error)

	// MessageCount returns the number of cached messages.
	MessageCount(ctx context.Context) (int, error)

	// ClearMessages drops all cached messages.
	ClearMessages(ctx context.Context) error

	// ClearLabels drops all cached labels.
	ClearLabels(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}

// ProgressFunc reports fetch or delete progress as (done, total).
type ProgressFunc func(done, total int)

// MailProvider defines the interface for the remote mail service.
type MailProvider interface {
	// FetchMessages lists and hydrates message metadata for the last N days.
	FetchMessages(ctx context.Context, days int, progress ProgressFunc) ([]Message, error)

	// FetchLabels lists all labels with their message counts.
	FetchLabels(ctx context.Context) ([]Label, error)

	// Trash moves a message to the trash (recoverable).
	Trash(ctx context.Context, messageID string) error

	// Untrash restores a message from the trash.
	Untrash(ctx context.Context, messageID string) error

	// Delete permanently deletes a message (not recoverable).
	Delete(ctx context.Context, messageID string) error

	// EmptyTrash permanently deletes everything in the trash and returns
	// the approximate number of messages removed.
	EmptyTrash(ctx context.Context) (int64, error)
}
