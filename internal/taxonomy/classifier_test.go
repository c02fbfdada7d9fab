package taxonomy

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/casey/mailsweep/internal/core"
)

func TestClassifyNewsletter(t *testing.T) {
	msg := core.Message{
		Sender:  "newsletter@techdigest.com",
		Subject: "Your weekly digest",
	}
	be.Equal(t, ClassifyMessage(msg, ""), "newsletter")
}

func TestClassifyMarketing(t *testing.T) {
	msg := core.Message{
		Sender:  "promo@store.com",
		Subject: "50% off everything!",
		Snippet: "Limited time offer. Unsubscribe anytime.",
	}
	be.Equal(t, ClassifyMessage(msg, ""), "marketing")
}

func TestClassifyTransactional(t *testing.T) {
	msg := core.Message{
		Sender:  "orders@amazon.com",
		Subject: "Your order has shipped",
	}
	be.Equal(t, ClassifyMessage(msg, ""), "transactional")
}

func TestClassifySocial(t *testing.T) {
	msg := core.Message{
		Sender:  "notifications@linkedin.com",
		Subject: "You have a new connection request",
	}
	be.Equal(t, ClassifyMessage(msg, ""), "social")
}

func TestClassifyAutomated(t *testing.T) {
	msg := core.Message{
		Sender:  "noreply@github.com",
		Subject: "Password reset requested",
	}
	be.Equal(t, ClassifyMessage(msg, ""), "automated")
}

func TestClassifyProfessional(t *testing.T) {
	msg := core.Message{
		Sender:  "bob@acme.com",
		Subject: "Meeting agenda for Monday",
	}
	be.Equal(t, ClassifyMessage(msg, "acme.com"), "professional")
}

func TestClassifyPersonal(t *testing.T) {
	msg := core.Message{
		Sender:  "jane.doe@gmail.com",
		Subject: "Lunch next week?",
	}
	be.Equal(t, ClassifyMessage(msg, ""), "personal")
}

func TestClassifyUnknown(t *testing.T) {
	msg := core.Message{
		Sender:  "x@obscure-vendor.io",
		Subject: "hello",
	}
	be.Equal(t, ClassifyMessage(msg, ""), CategoryUnknown)
}

func TestClassifyPriorityOrder(t *testing.T) {
	// Matches both newsletter (from) and marketing (signal); the lower
	// priority value wins.
	msg := core.Message{
		Sender:  "newsletter@shop.com",
		Subject: "Weekly roundup",
		Snippet: "Unsubscribe here",
	}
	be.Equal(t, ClassifyMessage(msg, ""), "newsletter")
}

func TestClassifyBatch(t *testing.T) {
	messages := []core.Message{
		{Sender: "newsletter@a.com", Subject: "digest"},
		{Sender: "someone@nowhere.zz", Subject: "???"},
	}
	out := ClassifyBatch(messages, "")

	be.Equal(t, len(out), 2)
	be.Equal(t, out[0].Category, "newsletter")
	be.Equal(t, out[1].Category, CategoryUnknown)
}

func TestGetCategoryStats(t *testing.T) {
	messages := []core.Message{
		{Sender: "newsletter@a.com", Subject: "digest one", IsUnread: true},
		{Sender: "newsletter@b.com", Subject: "digest two"},
		{Sender: "promo@c.com", Subject: "big sale"},
	}
	stats := GetCategoryStats(messages, "")

	newsletter := stats["newsletter"]
	be.Equal(t, newsletter.Count, 2)
	be.Equal(t, newsletter.Unread, 1)
	be.Equal(t, newsletter.Read, 1)
	be.Equal(t, newsletter.ReadRate, 50.0)
	be.Equal(t, newsletter.UniqueSenders, 2)
	be.Equal(t, stats["marketing"].Count, 1)
}

func TestGetUnlabeledTaxonomySkipsOrganizedMail(t *testing.T) {
	messages := []core.Message{
		{Sender: "newsletter@a.com", Subject: "digest", Labels: []string{"INBOX"}},
		{Sender: "newsletter@b.com", Subject: "digest", Labels: []string{"Label_7"}},
	}
	result := GetUnlabeledTaxonomy(messages, "")

	be.Equal(t, result.TotalUnlabeled, 1)
	be.Equal(t, result.Distribution["newsletter"], 1)
}

func TestSenderCategoryMap(t *testing.T) {
	messages := []core.Message{
		{Sender: "promo@c.com", Subject: "sale now"},
		{Sender: "promo@c.com", Subject: "deal time"},
		{Sender: "friend@gmail.com", Subject: "hey"},
	}
	byType := SenderCategoryMap(messages, "")

	be.Equal(t, byType["promo@c.com"], "marketing")
	be.Equal(t, byType["friend@gmail.com"], "personal")
}
