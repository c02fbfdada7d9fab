package gmail

import (
	"testing"
	"time"

	"github.com/nalgeon/be"
	gmailapi "google.golang.org/api/gmail/v1"
)

func TestExtractAddress(t *testing.T) {
	be.Equal(t, extractAddress(`"Jane Doe" <Jane@Example.com>`), "jane@example.com")
	be.Equal(t, extractAddress("bare@example.com"), "bare@example.com")
	be.Equal(t, extractAddress(" Mixed@Case.COM "), "mixed@case.com")
}

func TestParseDate(t *testing.T) {
	parsed := parseDate("Mon, 2 Jun 2025 15:04:05 -0700")
	be.True(t, !parsed.IsZero())
	be.Equal(t, parsed.Year(), 2025)

	be.True(t, parseDate("not a date").IsZero())
}

func TestParseMessage(t *testing.T) {
	raw := &gmailapi.Message{
		Id:           "m1",
		ThreadId:     "t1",
		Snippet:      "snippet text",
		LabelIds:     []string{"INBOX", "UNREAD"},
		InternalDate: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC).UnixMilli(),
		Payload: &gmailapi.MessagePart{
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: `"Shop" <Deals@Shop.com>`},
				{Name: "To", Value: "me@example.com"},
				{Name: "Subject", Value: "50% off"},
			},
			Parts: []*gmailapi.MessagePart{
				{Filename: "invoice.pdf"},
			},
		},
	}

	msg := parseMessage(raw)
	be.Equal(t, msg.MessageID, "m1")
	be.Equal(t, msg.ThreadID, "t1")
	be.Equal(t, msg.Sender, "deals@shop.com")
	be.Equal(t, msg.Recipients, "me@example.com")
	be.Equal(t, msg.Subject, "50% off")
	be.True(t, msg.IsUnread)
	be.True(t, msg.HasAttachments)
	// no Date header, falls back to the internal timestamp
	be.Equal(t, msg.Date.UTC(), time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
}

func TestParseMessageNoAttachments(t *testing.T) {
	raw := &gmailapi.Message{
		Id: "m2",
		Payload: &gmailapi.MessagePart{
			Parts: []*gmailapi.MessagePart{{MimeType: "text/plain"}},
		},
	}

	msg := parseMessage(raw)
	be.True(t, !msg.HasAttachments)
	be.True(t, !msg.IsUnread)
	be.True(t, msg.Date.IsZero())
}
