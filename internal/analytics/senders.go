package analytics

import (
	"sort"
	"strings"

	"github.com/casey/mailsweep/internal/core"
)

// SenderCount pairs a sender address with its message count.
type SenderCount struct {
	Sender string
	Count  int
}

// FrequentSenders returns the top senders by volume, at most limit entries.
// A limit of 0 or less returns all senders.
func FrequentSenders(messages []core.Message, limit int) []SenderCount {
	counts := map[string]int{}
	var order []string
	for _, msg := range messages {
		sender := msg.Sender
		if sender == "" {
			sender = "unknown"
		}
		if _, seen := counts[sender]; !seen {
			order = append(order, sender)
		}
		counts[sender]++
	}

	out := make([]SenderCount, 0, len(order))
	for _, sender := range order {
		out = append(out, SenderCount{Sender: sender, Count: counts[sender]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DomainCount pairs a sender domain with its message count.
type DomainCount struct {
	Domain string
	Count  int
}

// SenderDomains aggregates message counts by the sender's domain, sorted by
// volume descending.
func SenderDomains(messages []core.Message) []DomainCount {
	counts := map[string]int{}
	var order []string
	for _, msg := range messages {
		domain := senderDomain(msg.Sender)
		if domain == "" {
			continue
		}
		if _, seen := counts[domain]; !seen {
			order = append(order, domain)
		}
		counts[domain]++
	}

	out := make([]DomainCount, 0, len(order))
	for _, domain := range order {
		out = append(out, DomainCount{Domain: domain, Count: counts[domain]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// OneTimeSenders returns senders that appear exactly once, in first-seen
// order. These are prime unsubscribe or cleanup candidates.
func OneTimeSenders(messages []core.Message) []string {
	counts := map[string]int{}
	var order []string
	for _, msg := range messages {
		if msg.Sender == "" {
			continue
		}
		if _, seen := counts[msg.Sender]; !seen {
			order = append(order, msg.Sender)
		}
		counts[msg.Sender]++
	}

	var out []string
	for _, sender := range order {
		if counts[sender] == 1 {
			out = append(out, sender)
		}
	}
	return out
}

func senderDomain(sender string) string {
	at := strings.LastIndex(sender, "@")
	if at < 0 || at == len(sender)-1 {
		return ""
	}
	return sender[at+1:]
}
