package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/casey/mailsweep/internal/core"
)

// MySQLCache is a MySQL implementation of the MessageRepository interface,
// for setups that share one message cache across machines.
type MySQLCache struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLCache connects to MySQL and ensures the cache schema exists.
// The DSN must include parseTime=true so date columns scan as time.Time.
func NewMySQLCache(dsn string, logger *zap.Logger) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			message_id VARCHAR(64) PRIMARY KEY,
			thread_id VARCHAR(64),
			date TIMESTAMP NULL,
			sender VARCHAR(320),
			recipients TEXT,
			subject TEXT,
			snippet TEXT,
			labels TEXT,
			is_unread BOOLEAN,
			has_attachments BOOLEAN,
			INDEX idx_messages_date (date),
			INDEX idx_messages_sender (sender)
		)`,
		`CREATE TABLE IF NOT EXISTS labels (
			label_id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255),
			type VARCHAR(16),
			messages_total BIGINT,
			messages_unread BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS cache_metadata (
			` + "`key`" + ` VARCHAR(64) PRIMARY KEY,
			value VARCHAR(255)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &MySQLCache{db: db, logger: logger}, nil
}

// SaveMessages upserts messages in a single transaction and stamps the
// fetch time.
func (c *MySQLCache) SaveMessages(ctx context.Context, messages []core.Message) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages
		(message_id, thread_id, date, sender, recipients, subject, snippet, labels, is_unread, has_attachments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			thread_id = VALUES(thread_id), date = VALUES(date), sender = VALUES(sender),
			recipients = VALUES(recipients), subject = VALUES(subject), snippet = VALUES(snippet),
			labels = VALUES(labels), is_unread = VALUES(is_unread), has_attachments = VALUES(has_attachments)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, msg := range messages {
		labelsJSON, err := json.Marshal(msg.Labels)
		if err != nil {
			return saved, fmt.Errorf("failed to encode labels: %w", err)
		}
		var date any
		if !msg.Date.IsZero() {
			date = msg.Date.UTC()
		}
		_, err = stmt.ExecContext(ctx,
			msg.MessageID, msg.ThreadID, date, msg.Sender, msg.Recipients,
			msg.Subject, msg.Snippet, string(labelsJSON), msg.IsUnread, msg.HasAttachments)
		if err != nil {
			return saved, fmt.Errorf("failed to insert message %s: %w", msg.MessageID, err)
		}
		saved++
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO cache_metadata (`key`, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
		lastFetchKey, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return saved, fmt.Errorf("failed to record fetch time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit messages: %w", err)
	}
	c.logger.Debug("Saved messages to cache", zap.Int("count", saved))
	return saved, nil
}

// Messages returns cached messages newest first, optionally limited to the
// last sinceDays days.
func (c *MySQLCache) Messages(ctx context.Context, sinceDays int) ([]core.Message, error) {
	query := `
		SELECT message_id, thread_id, date, sender, recipients, subject, snippet, labels, is_unread, has_attachments
		FROM messages
	`
	var args []any
	if sinceDays > 0 {
		query += ` WHERE date >= ?`
		args = append(args, time.Now().UTC().AddDate(0, 0, -sinceDays))
	}
	query += ` ORDER BY date DESC`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		msg, err := scanMySQLMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Message returns a single cached message, or nil when absent.
func (c *MySQLCache) Message(ctx context.Context, messageID string) (*core.Message, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT message_id, thread_id, date, sender, recipients, subject, snippet, labels, is_unread, has_attachments
		FROM messages WHERE message_id = ?
	`, messageID)

	msg, err := scanMySQLMessage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// DeleteMessages removes messages from the cache.
func (c *MySQLCache) DeleteMessages(ctx context.Context, messageIDs []string) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM messages WHERE message_id = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	deleted := 0
	for _, id := range messageIDs {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete message %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletes: %w", err)
	}
	return deleted, nil
}

// SaveLabels replaces the cached label set.
func (c *MySQLCache) SaveLabels(ctx context.Context, labels []core.Label) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM labels`); err != nil {
		return fmt.Errorf("failed to clear labels: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO labels (label_id, name, type, messages_total, messages_unread)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare label insert: %w", err)
	}
	defer stmt.Close()

	for _, label := range labels {
		_, err := stmt.ExecContext(ctx, label.ID, label.Name, label.Type, label.MessagesTotal, label.MessagesUnread)
		if err != nil {
			return fmt.Errorf("failed to insert label %s: %w", label.ID, err)
		}
	}
	return tx.Commit()
}

// Labels returns cached labels ordered by name.
func (c *MySQLCache) Labels(ctx context.Context) ([]core.Label, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT label_id, name, type, messages_total, messages_unread
		FROM labels ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	var labels []core.Label
	for rows.Next() {
		var label core.Label
		if err := rows.Scan(&label.ID, &label.Name, &label.Type, &label.MessagesTotal, &label.MessagesUnread); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// LabelNameMap maps label IDs to display names.
func (c *MySQLCache) LabelNameMap(ctx context.Context) (map[string]string, error) {
	labels, err := c.Labels(ctx)
	if err != nil {
		return nil, err
	}
	nameMap := make(map[string]string, len(labels))
	for _, label := range labels {
		nameMap[label.ID] = label.Name
	}
	return nameMap, nil
}

// IsFresh reports whether the last fetch happened within maxAge.
func (c *MySQLCache) IsFresh(ctx context.Context, maxAge time.Duration) (bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, "SELECT value FROM cache_metadata WHERE `key` = ?", lastFetchKey).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query fetch time: %w", err)
	}

	lastFetch, err := time.Parse(time.RFC3339, value)
	if err != nil {
		c.logger.Warn("Failed to parse last fetch time", zap.Error(err))
		return false, nil
	}
	return time.Since(lastFetch) <= maxAge, nil
}

// MessageCount returns the number of cached messages.
func (c *MySQLCache) MessageCount(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// ClearMessages drops all cached messages and the fetch timestamp.
func (c *MySQLCache) ClearMessages(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache_metadata WHERE `key` = ?", lastFetchKey); err != nil {
		return fmt.Errorf("failed to clear fetch time: %w", err)
	}
	return nil
}

// ClearLabels drops all cached labels.
func (c *MySQLCache) ClearLabels(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM labels`); err != nil {
		return fmt.Errorf("failed to clear labels: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *MySQLCache) Close() error {
	return c.db.Close()
}

func scanMySQLMessage(row rowScanner) (core.Message, error) {
	var msg core.Message
	var date sql.NullTime
	var labelsJSON string

	err := row.Scan(&msg.MessageID, &msg.ThreadID, &date, &msg.Sender, &msg.Recipients,
		&msg.Subject, &msg.Snippet, &labelsJSON, &msg.IsUnread, &msg.HasAttachments)
	if err != nil {
		if err == sql.ErrNoRows {
			return msg, err
		}
		return msg, fmt.Errorf("failed to scan message: %w", err)
	}

	if date.Valid {
		msg.Date = date.Time
	}
	if labelsJSON != "" {
		if err := json.Unmarshal([]byte(labelsJSON), &msg.Labels); err != nil {
			return msg, fmt.Errorf("failed to decode labels for %s: %w", msg.MessageID, err)
		}
	}
	return msg, nil
}
