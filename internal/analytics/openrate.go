// Package analytics computes engagement metrics over cached messages.
// Everything here is pure aggregation over immutable snapshots.
package analytics

import (
	"math"
	"sort"

	"github.com/casey/mailsweep/internal/core"
)

// OpenRateStats summarizes read/unread counts as an engagement proxy.
type OpenRateStats struct {
	Total    int
	Read     int
	Unread   int
	OpenRate float64 // percentage
}

// OpenRate computes the overall open rate: (total - unread) / total.
func OpenRate(messages []core.Message) OpenRateStats {
	total := len(messages)
	unread := 0
	for _, msg := range messages {
		if msg.IsUnread {
			unread++
		}
	}
	read := total - unread
	return OpenRateStats{
		Total:    total,
		Read:     read,
		Unread:   unread,
		OpenRate: percentage(read, total),
	}
}

// SenderEngagementStats is per-sender read/unread engagement.
type SenderEngagementStats struct {
	Sender   string
	Total    int
	Read     int
	Unread   int
	OpenRate float64
}

// SenderEngagement computes engagement per sender, sorted by volume
// descending.
func SenderEngagement(messages []core.Message) []SenderEngagementStats {
	type acc struct {
		total  int
		unread int
	}
	buckets := map[string]*acc{}
	var order []string

	for _, msg := range messages {
		sender := msg.Sender
		if sender == "" {
			sender = "unknown"
		}
		b := buckets[sender]
		if b == nil {
			b = &acc{}
			buckets[sender] = b
			order = append(order, sender)
		}
		b.total++
		if msg.IsUnread {
			b.unread++
		}
	}

	out := make([]SenderEngagementStats, 0, len(order))
	for _, sender := range order {
		b := buckets[sender]
		read := b.total - b.unread
		out = append(out, SenderEngagementStats{
			Sender:   sender,
			Total:    b.total,
			Read:     read,
			Unread:   b.unread,
			OpenRate: percentage(read, b.total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// HighEngagementSenders returns senders with at least minTotal messages and
// an open rate of at least minRate percent. The smart-delete CLI feeds this
// into the scoring context as a keep signal.
func HighEngagementSenders(messages []core.Message, minTotal int, minRate float64) []SenderEngagementStats {
	var out []SenderEngagementStats
	for _, s := range SenderEngagement(messages) {
		if s.Total >= minTotal && s.OpenRate >= minRate {
			out = append(out, s)
		}
	}
	return out
}

// LowEngagementSenders returns senders with at least minTotal messages and
// an open rate at or below maxRate percent.
func LowEngagementSenders(messages []core.Message, minTotal int, maxRate float64) []SenderEngagementStats {
	var out []SenderEngagementStats
	for _, s := range SenderEngagement(messages) {
		if s.Total >= minTotal && s.OpenRate <= maxRate {
			out = append(out, s)
		}
	}
	return out
}

// HighEngagementSenderSet returns just the sender addresses, ready to drop
// into a core.UserContext.
func HighEngagementSenderSet(messages []core.Message, minTotal int, minRate float64) map[string]struct{} {
	out := map[string]struct{}{}
	for _, s := range HighEngagementSenders(messages, minTotal, minRate) {
		out[s.Sender] = struct{}{}
	}
	return out
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
