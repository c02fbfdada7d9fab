package gmail

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/casey/mailsweep/internal/core"
)

const (
	gmailUser      = "me"
	listPageSize   = 500
	maxRetryDelay  = 60 * time.Second
	baseRetryDelay = time.Second
)

// Provider is a Gmail implementation of the MailProvider interface.
type Provider struct {
	srv    *gmailapi.Service
	logger *zap.Logger
}

// NewProvider wraps an authenticated Gmail service.
func NewProvider(srv *gmailapi.Service, logger *zap.Logger) *Provider {
	return &Provider{srv: srv, logger: logger}
}

// FetchMessages lists message IDs for the last N days, then hydrates each
// with metadata headers. A days value of 0 fetches everything.
func (p *Provider) FetchMessages(ctx context.Context, days int, progress core.ProgressFunc) ([]core.Message, error) {
	ids, err := p.listMessageIDs(ctx, days)
	if err != nil {
		return nil, err
	}

	messages := make([]core.Message, 0, len(ids))
	for i, id := range ids {
		msg, err := p.getMessage(ctx, id)
		if err != nil {
			p.logger.Warn("Skipping message that failed to fetch",
				zap.String("message_id", id), zap.Error(err))
			continue
		}
		messages = append(messages, msg)
		if progress != nil {
			progress(i+1, len(ids))
		}
	}
	p.logger.Info("Fetched messages from Gmail",
		zap.Int("listed", len(ids)), zap.Int("fetched", len(messages)))
	return messages, nil
}

func (p *Provider) listMessageIDs(ctx context.Context, days int) ([]string, error) {
	var query string
	if days > 0 {
		query = fmt.Sprintf("after:%s", time.Now().AddDate(0, 0, -days).Format("2006/01/02"))
	}

	var ids []string
	pageToken := ""
	for {
		call := p.srv.Users.Messages.List(gmailUser).MaxResults(listPageSize).Context(ctx)
		if query != "" {
			call = call.Q(query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var resp *gmailapi.ListMessagesResponse
		err := p.withRetry(ctx, func() error {
			var err error
			resp, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return ids, nil
}

func (p *Provider) getMessage(ctx context.Context, id string) (core.Message, error) {
	var raw *gmailapi.Message
	err := p.withRetry(ctx, func() error {
		var err error
		raw, err = p.srv.Users.Messages.Get(gmailUser, id).
			Format("metadata").
			MetadataHeaders("From", "To", "Subject", "Date").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return core.Message{}, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return parseMessage(raw), nil
}

func parseMessage(raw *gmailapi.Message) core.Message {
	msg := core.Message{
		MessageID: raw.Id,
		ThreadID:  raw.ThreadId,
		Snippet:   raw.Snippet,
		Labels:    raw.LabelIds,
	}
	for _, label := range raw.LabelIds {
		if label == "UNREAD" {
			msg.IsUnread = true
		}
	}

	if raw.Payload != nil {
		for _, header := range raw.Payload.Headers {
			switch header.Name {
			case "From":
				msg.Sender = extractAddress(header.Value)
			case "To":
				msg.Recipients = header.Value
			case "Subject":
				msg.Subject = header.Value
			case "Date":
				msg.Date = parseDate(header.Value)
			}
		}
		msg.HasAttachments = hasAttachments(raw.Payload)
	}
	if msg.Date.IsZero() && raw.InternalDate > 0 {
		msg.Date = time.UnixMilli(raw.InternalDate)
	}
	return msg
}

// extractAddress pulls the bare lower-cased address out of a From header
// like `"Jane Doe" <jane@example.com>`.
func extractAddress(from string) string {
	if addr, err := mail.ParseAddress(from); err == nil {
		return strings.ToLower(addr.Address)
	}
	return strings.ToLower(strings.TrimSpace(from))
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
}

func parseDate(value string) time.Time {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func hasAttachments(payload *gmailapi.MessagePart) bool {
	if payload.Filename != "" {
		return true
	}
	for _, part := range payload.Parts {
		if hasAttachments(part) {
			return true
		}
	}
	return false
}

// FetchLabels lists all labels with their message counts.
func (p *Provider) FetchLabels(ctx context.Context) ([]core.Label, error) {
	var resp *gmailapi.ListLabelsResponse
	err := p.withRetry(ctx, func() error {
		var err error
		resp, err = p.srv.Users.Labels.List(gmailUser).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	labels := make([]core.Label, 0, len(resp.Labels))
	for _, raw := range resp.Labels {
		// List responses omit counts; fetch each label for them.
		var detail *gmailapi.Label
		err := p.withRetry(ctx, func() error {
			var err error
			detail, err = p.srv.Users.Labels.Get(gmailUser, raw.Id).Context(ctx).Do()
			return err
		})
		if err != nil {
			p.logger.Warn("Skipping label that failed to fetch",
				zap.String("label_id", raw.Id), zap.Error(err))
			continue
		}
		labels = append(labels, core.Label{
			ID:             detail.Id,
			Name:           detail.Name,
			Type:           detail.Type,
			MessagesTotal:  detail.MessagesTotal,
			MessagesUnread: detail.MessagesUnread,
		})
	}
	return labels, nil
}

// Trash moves a message to the trash.
func (p *Provider) Trash(ctx context.Context, messageID string) error {
	return p.withRetry(ctx, func() error {
		_, err := p.srv.Users.Messages.Trash(gmailUser, messageID).Context(ctx).Do()
		return err
	})
}

// Untrash restores a message from the trash.
func (p *Provider) Untrash(ctx context.Context, messageID string) error {
	return p.withRetry(ctx, func() error {
		_, err := p.srv.Users.Messages.Untrash(gmailUser, messageID).Context(ctx).Do()
		return err
	})
}

// Delete permanently deletes a message, bypassing the trash.
func (p *Provider) Delete(ctx context.Context, messageID string) error {
	return p.withRetry(ctx, func() error {
		return p.srv.Users.Messages.Delete(gmailUser, messageID).Context(ctx).Do()
	})
}

// EmptyTrash permanently deletes everything in the trash in batches of up
// to 1000 IDs and returns the number of messages removed.
func (p *Provider) EmptyTrash(ctx context.Context) (int64, error) {
	var deleted int64
	pageToken := ""
	for {
		call := p.srv.Users.Messages.List(gmailUser).
			LabelIds("TRASH").MaxResults(listPageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var resp *gmailapi.ListMessagesResponse
		err := p.withRetry(ctx, func() error {
			var err error
			resp, err = call.Do()
			return err
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to list trash: %w", err)
		}
		if len(resp.Messages) == 0 {
			return deleted, nil
		}

		ids := make([]string, 0, len(resp.Messages))
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		err = p.withRetry(ctx, func() error {
			return p.srv.Users.Messages.BatchDelete(gmailUser, &gmailapi.BatchDeleteMessagesRequest{
				Ids: ids,
			}).Context(ctx).Do()
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to batch delete trash: %w", err)
		}
		deleted += int64(len(ids))

		if resp.NextPageToken == "" {
			return deleted, nil
		}
		pageToken = resp.NextPageToken
	}
}

// withRetry retries rate-limited calls with exponential backoff, capped at
// maxRetryDelay per attempt.
func (p *Provider) withRetry(ctx context.Context, call func() error) error {
	delay := baseRetryDelay
	for {
		err := call()
		if err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return err
		}

		p.logger.Warn("Rate limited by Gmail, backing off", zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func isRateLimited(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		return apiErr.Code == 429 || (apiErr.Code == 403 && strings.Contains(strings.ToLower(apiErr.Message), "rate"))
	}
	return false
}
