package taxonomy

import (
	"math"
	"sort"
	"strings"

	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/labels"
)

// categoryOrder lists categories by ascending priority so classification is
// deterministic regardless of map iteration order.
var categoryOrder = buildCategoryOrder()

func buildCategoryOrder() []string {
	names := make([]string, 0, len(SenderTypes))
	for name := range SenderTypes {
		if name != CategoryUnknown {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return SenderTypes[names[i]].Priority < SenderTypes[names[j]].Priority
	})
	return names
}

// ClassifyMessage assigns a message to a sender-type category. Among the
// categories whose patterns match, the one with the lowest priority value
// wins; CategoryUnknown is the fallback.
func ClassifyMessage(msg core.Message, userDomain string) string {
	sender := strings.ToLower(msg.Sender)
	subject := strings.ToLower(msg.Subject)
	content := subject + " " + strings.ToLower(msg.Snippet)

	for _, category := range categoryOrder {
		if categoryScore(category, sender, subject, content, userDomain) > 0 {
			return category
		}
	}
	return CategoryUnknown
}

func categoryScore(category, sender, subject, content, userDomain string) int {
	rules := SenderTypes[category]
	score := 0

	for _, pattern := range rules.FromPatterns {
		if strings.Contains(sender, pattern) {
			score += 3
			break
		}
	}
	for _, pattern := range rules.SubjectPatterns {
		if strings.Contains(subject, pattern) {
			score += 2
			break
		}
	}
	for _, signal := range rules.Signals {
		if strings.Contains(content, signal) {
			score++
		}
	}

	if category == "professional" && userDomain != "" &&
		strings.Contains(sender, strings.ToLower(userDomain)) {
		score += 5
	}

	// Consumer domains alone are a weak signal; only count them for the
	// low-volume personal category when nothing stronger matched.
	if rules.LowVolume && score > 0 {
		score = 1
	}

	return score
}

// ClassifiedMessage pairs a message with its assigned category.
type ClassifiedMessage struct {
	core.Message
	Category string
}

// ClassifyBatch classifies every message in a collection.
func ClassifyBatch(messages []core.Message, userDomain string) []ClassifiedMessage {
	out := make([]ClassifiedMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, ClassifiedMessage{
			Message:  msg,
			Category: ClassifyMessage(msg, userDomain),
		})
	}
	return out
}

// CategoryStats aggregates per-category counts and engagement.
type CategoryStats struct {
	Count          int
	Unread         int
	Read           int
	ReadRate       float64
	UniqueSenders  int
	TopSenders     []string
	SampleSubjects []string
	Description    string
	Actions        []string
}

const maxSampleSubjects = 10

// GetCategoryStats computes statistics for each category seen in messages.
func GetCategoryStats(messages []core.Message, userDomain string) map[string]CategoryStats {
	type acc struct {
		count    int
		unread   int
		senders  map[string]struct{}
		subjects []string
	}
	buckets := map[string]*acc{}

	for _, msg := range messages {
		category := ClassifyMessage(msg, userDomain)
		b := buckets[category]
		if b == nil {
			b = &acc{senders: map[string]struct{}{}}
			buckets[category] = b
		}
		b.count++
		if msg.IsUnread {
			b.unread++
		}
		b.senders[msg.Sender] = struct{}{}
		if len(b.subjects) < maxSampleSubjects {
			b.subjects = append(b.subjects, msg.Subject)
		}
	}

	out := map[string]CategoryStats{}
	for category, b := range buckets {
		read := b.count - b.unread
		senders := make([]string, 0, len(b.senders))
		for s := range b.senders {
			senders = append(senders, s)
		}
		sort.Strings(senders)
		if len(senders) > 5 {
			senders = senders[:5]
		}
		out[category] = CategoryStats{
			Count:          b.count,
			Unread:         b.unread,
			Read:           read,
			ReadRate:       percentage(read, b.count),
			UniqueSenders:  len(b.senders),
			TopSenders:     senders,
			SampleSubjects: b.subjects,
			Description:    SenderTypes[category].Description,
			Actions:        CategoryActions[category],
		}
	}
	return out
}

// UnlabeledTaxonomy describes the category makeup of unlabeled mail.
type UnlabeledTaxonomy struct {
	TotalUnlabeled int
	Categories     map[string]CategoryStats
	Distribution   map[string]int
}

// GetUnlabeledTaxonomy classifies only the messages the user never organized.
func GetUnlabeledTaxonomy(messages []core.Message, userDomain string) UnlabeledTaxonomy {
	unlabeled := labels.FilterUnlabeled(messages)
	stats := GetCategoryStats(unlabeled, userDomain)

	dist := make(map[string]int, len(stats))
	for category, s := range stats {
		dist[category] = s.Count
	}
	return UnlabeledTaxonomy{
		TotalUnlabeled: len(unlabeled),
		Categories:     stats,
		Distribution:   dist,
	}
}

// SenderCategoryMap maps each sender to its most common category.
func SenderCategoryMap(messages []core.Message, userDomain string) map[string]string {
	counts := map[string]map[string]int{}
	for _, msg := range messages {
		category := ClassifyMessage(msg, userDomain)
		if counts[msg.Sender] == nil {
			counts[msg.Sender] = map[string]int{}
		}
		counts[msg.Sender][category]++
	}

	out := make(map[string]string, len(counts))
	for sender, categories := range counts {
		best, bestCount := CategoryUnknown, -1
		for category, n := range categories {
			if n > bestCount || (n == bestCount && category < best) {
				best, bestCount = category, n
			}
		}
		out[sender] = best
	}
	return out
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
