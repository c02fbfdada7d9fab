package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/labels"
)

// labelAgg accumulates per-label counters in a single pass over the
// message set.
type labelAgg struct {
	count   int
	unread  int
	senders map[string]int
	domains map[string]struct{}
}

func aggregateUserLabels(messages []core.Message) (map[string]*labelAgg, []string) {
	aggs := map[string]*labelAgg{}
	var order []string
	for _, msg := range messages {
		domain := senderDomain(msg.Sender)
		for _, id := range labels.UserLabels(msg.Labels) {
			agg := aggs[id]
			if agg == nil {
				agg = &labelAgg{senders: map[string]int{}, domains: map[string]struct{}{}}
				aggs[id] = agg
				order = append(order, id)
			}
			agg.count++
			if msg.IsUnread {
				agg.unread++
			}
			agg.senders[msg.Sender]++
			if domain != "" {
				agg.domains[domain] = struct{}{}
			}
		}
	}
	return aggs, order
}

func displayName(nameMap map[string]string, id string) string {
	if name := nameMap[id]; name != "" {
		return name
	}
	return id
}

// LabelCoherence reports how concentrated a label's senders are. A label
// fed by a single sender scores 100; one where every message comes from a
// different sender scores near zero.
type LabelCoherence struct {
	LabelID       string
	Name          string
	Count         int
	UniqueSenders int
	UniqueDomains int
	Score         int
	TopSender     string
	TopSenderPct  float64
	Assessment    string
}

// CoherenceScores rates each user label by sender concentration, sorted
// by message count descending.
func CoherenceScores(messages []core.Message, nameMap map[string]string) []LabelCoherence {
	aggs, order := aggregateUserLabels(messages)

	out := make([]LabelCoherence, 0, len(order))
	for _, id := range order {
		agg := aggs[id]
		score := coherenceScore(agg)
		top, topCount := topSender(agg.senders)
		out = append(out, LabelCoherence{
			LabelID:       id,
			Name:          displayName(nameMap, id),
			Count:         agg.count,
			UniqueSenders: len(agg.senders),
			UniqueDomains: len(agg.domains),
			Score:         score,
			TopSender:     top,
			TopSenderPct:  percentage(topCount, agg.count),
			Assessment:    coherenceAssessment(score),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func coherenceScore(agg *labelAgg) int {
	if len(agg.senders) == 1 {
		return 100
	}
	if len(agg.domains) == 1 {
		return 90
	}
	// Low sender/message ratio means a focused label; a ratio of 1.0
	// means every message has a distinct sender.
	senderRatio := float64(len(agg.senders)) / float64(agg.count)
	domainRatio := float64(len(agg.domains)) / float64(agg.count)
	score := int((1-senderRatio)*70 + (1-domainRatio)*30)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func coherenceAssessment(score int) string {
	switch {
	case score >= 90:
		return "Highly focused"
	case score >= 70:
		return "Well organized"
	case score >= 50:
		return "Moderately broad"
	case score >= 30:
		return "Consider splitting"
	default:
		return "Too broad, split recommended"
	}
}

func topSender(senders map[string]int) (string, int) {
	var top string
	var count int
	for sender, n := range senders {
		if n > count || (n == count && sender < top) {
			top, count = sender, n
		}
	}
	return top, count
}

// LabelOverlap is a pair of user labels applied to the same messages.
// Rate is the shared count as a percentage of the smaller label's total.
type LabelOverlap struct {
	LabelA string
	LabelB string
	CountA int
	CountB int
	Shared int
	Rate   float64
	Action string
	Detail string
}

// LabelOverlaps finds label pairs whose overlap rate meets minRate
// (a percentage), sorted by rate descending. Pairs at 80% or more get a
// merge recommendation.
func LabelOverlaps(messages []core.Message, nameMap map[string]string, minRate float64) []LabelOverlap {
	counts := map[string]int{}
	type pairKey struct{ a, b string }
	pairs := map[pairKey]int{}

	for _, msg := range messages {
		ids := labels.UserLabels(msg.Labels)
		sort.Strings(ids)
		for _, id := range ids {
			counts[id]++
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairs[pairKey{ids[i], ids[j]}]++
			}
		}
	}

	var out []LabelOverlap
	for key, shared := range pairs {
		countA, countB := counts[key.a], counts[key.b]
		smaller := countA
		if countB < countA {
			smaller = countB
		}
		if smaller == 0 {
			continue
		}
		rate := float64(shared) / float64(smaller) * 100
		if rate < minRate {
			continue
		}

		nameA, nameB := displayName(nameMap, key.a), displayName(nameMap, key.b)
		small, large := nameA, nameB
		if countB < countA {
			small, large = nameB, nameA
		}
		var action, detail string
		switch {
		case rate >= 95:
			action = "MERGE"
			detail = fmt.Sprintf("%s and %s are nearly identical (%.0f%% overlap)", small, large, rate)
		case rate >= 80:
			action = "MERGE"
			detail = fmt.Sprintf("%s and %s share %.0f%% of their messages, consider merging", small, large, rate)
		default:
			action = "REVIEW"
			detail = fmt.Sprintf("%s and %s share %.0f%% of their messages", small, large, rate)
		}
		out = append(out, LabelOverlap{
			LabelA: nameA,
			LabelB: nameB,
			CountA: countA,
			CountB: countB,
			Shared: shared,
			Rate:   math.Round(rate*10) / 10,
			Action: action,
			Detail: detail,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate > out[j].Rate
		}
		return out[i].LabelA < out[j].LabelA
	})
	return out
}

// LabelEngagement compares one label's read rate to the inbox average.
type LabelEngagement struct {
	LabelID    string
	Name       string
	Count      int
	ReadRate   float64
	Difference float64
	Status     string
}

const (
	EngagementAboveAverage = "above_average"
	EngagementAverage      = "average"
	EngagementBelowAverage = "below_average"
)

// EngagementReport groups per-label engagement with the inbox baseline.
// WorkingWell lists labels read well above average on real volume;
// NeedsAttention lists high-volume labels almost never read.
type EngagementReport struct {
	Labels         []LabelEngagement
	InboxReadRate  float64
	WorkingWell    []string
	NeedsAttention []string
}

// EngagementEfficiency measures whether each user label helps mail get
// read. A label more than 10 points above the inbox read rate is working;
// more than 10 below is not.
func EngagementEfficiency(messages []core.Message, nameMap map[string]string) EngagementReport {
	read := 0
	for _, msg := range messages {
		if !msg.IsUnread {
			read++
		}
	}
	report := EngagementReport{InboxReadRate: percentage(read, len(messages))}

	aggs, order := aggregateUserLabels(messages)
	for _, id := range order {
		agg := aggs[id]
		rate := percentage(agg.count-agg.unread, agg.count)
		diff := math.Round((rate-report.InboxReadRate)*100) / 100
		name := displayName(nameMap, id)

		status := EngagementAverage
		switch {
		case diff >= 10:
			status = EngagementAboveAverage
			if agg.count >= 10 {
				report.WorkingWell = append(report.WorkingWell, name)
			}
		case diff < -10:
			status = EngagementBelowAverage
			if rate < 10 && agg.count >= 20 {
				report.NeedsAttention = append(report.NeedsAttention, name)
			}
		}
		report.Labels = append(report.Labels, LabelEngagement{
			LabelID:    id,
			Name:       name,
			Count:      agg.count,
			ReadRate:   rate,
			Difference: diff,
			Status:     status,
		})
	}
	sort.SliceStable(report.Labels, func(i, j int) bool { return report.Labels[i].Count > report.Labels[j].Count })
	return report
}

// LabelRecommendation is one prioritized label cleanup action. Lower
// Priority sorts first.
type LabelRecommendation struct {
	Priority int
	Action   string
	Label    string
	Reason   string
	Detail   string
	Impact   string
}

// LabelRecommendations combines overlap, engagement, and coherence
// analysis into a prioritized action list: merge near-identical pairs,
// fix or review dead labels, clean up abandoned ones, split overly broad
// ones.
func LabelRecommendations(messages []core.Message, all []core.Label, nameMap map[string]string) []LabelRecommendation {
	var recs []LabelRecommendation

	for _, o := range LabelOverlaps(messages, nameMap, 80) {
		pair := o.LabelA + " + " + o.LabelB
		if o.Rate >= 95 {
			recs = append(recs, LabelRecommendation{
				Priority: 1,
				Action:   "MERGE",
				Label:    pair,
				Reason:   fmt.Sprintf("Identical (%.0f%% overlap)", o.Rate),
				Detail:   o.Detail,
				Impact:   "high",
			})
		} else {
			recs = append(recs, LabelRecommendation{
				Priority: 2,
				Action:   "MERGE",
				Label:    pair,
				Reason:   fmt.Sprintf("High overlap (%.0f%%)", o.Rate),
				Detail:   o.Detail,
				Impact:   "medium",
			})
		}
	}

	engagement := EngagementEfficiency(messages, nameMap)
	coherence := CoherenceScores(messages, nameMap)
	cohByName := map[string]LabelCoherence{}
	for _, c := range coherence {
		cohByName[c.Name] = c
	}

	// Dead labels with volume point at a broken filter or an unsubscribe
	// candidate.
	for _, eng := range engagement.Labels {
		if eng.ReadRate != 0 || eng.Count < 10 {
			continue
		}
		if cohByName[eng.Name].UniqueSenders == 1 {
			recs = append(recs, LabelRecommendation{
				Priority: 2,
				Action:   "FIX",
				Label:    eng.Name,
				Reason:   "0% read rate, single sender",
				Detail:   fmt.Sprintf("May be a filter bug, %d messages never opened", eng.Count),
				Impact:   "medium",
			})
		} else {
			recs = append(recs, LabelRecommendation{
				Priority: 3,
				Action:   "REVIEW",
				Label:    eng.Name,
				Reason:   "0% read rate",
				Detail:   fmt.Sprintf("%d messages at 0%% read, unsubscribe or delete?", eng.Count),
				Impact:   "medium",
			})
		}
	}

	lowEngagement := map[string]struct{}{}
	for _, name := range engagement.NeedsAttention {
		lowEngagement[name] = struct{}{}
	}
	for _, eng := range engagement.Labels {
		if _, flagged := lowEngagement[eng.Name]; !flagged || eng.ReadRate == 0 {
			continue
		}
		recs = append(recs, LabelRecommendation{
			Priority: 4,
			Action:   "REVIEW",
			Label:    eng.Name,
			Reason:   fmt.Sprintf("Low engagement (%.0f%% read)", eng.ReadRate),
			Detail:   fmt.Sprintf("%d messages, consider unsubscribing", eng.Count),
			Impact:   "low",
		})
	}

	if abandoned := abandonedLabels(messages, all); len(abandoned) > 0 {
		shown := abandoned
		if len(shown) > 5 {
			shown = shown[:5]
		}
		detail := "Labels: " + strings.Join(shown, ", ")
		if len(abandoned) > 5 {
			detail += fmt.Sprintf(" and %d more", len(abandoned)-5)
		}
		recs = append(recs, LabelRecommendation{
			Priority: 5,
			Action:   "CLEANUP",
			Label:    fmt.Sprintf("%d abandoned labels", len(abandoned)),
			Reason:   "No messages in timeframe",
			Detail:   detail,
			Impact:   "low",
		})
	}

	for _, c := range coherence {
		if c.Score < 30 && c.Count >= 20 {
			recs = append(recs, LabelRecommendation{
				Priority: 6,
				Action:   "SPLIT",
				Label:    c.Name,
				Reason:   fmt.Sprintf("Low coherence (%d)", c.Score),
				Detail:   fmt.Sprintf("%d different senders, consider splitting", c.UniqueSenders),
				Impact:   "low",
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs
}

func abandonedLabels(messages []core.Message, all []core.Label) []string {
	usage := map[string]int{}
	for _, msg := range messages {
		for _, id := range labels.UserLabels(msg.Labels) {
			usage[id]++
		}
	}
	var out []string
	for _, label := range all {
		if label.Type == "system" || labels.IsSystemLabel(label.ID) {
			continue
		}
		if usage[label.ID] == 0 {
			out = append(out, label.Name)
		}
	}
	return out
}

// LabelHealth is the top-line label audit summary.
type LabelHealth struct {
	TotalUserLabels int
	WorkingWell     int
	NeedsAttention  int
	RedundantPairs  int
	Abandoned       int
	InboxReadRate   float64
}

// LabelHealthSummary rolls the audit up to a handful of counters: labels
// read at 30% or better are working, high-volume labels under 10% need
// attention, and labels carrying no messages in the window are abandoned.
func LabelHealthSummary(messages []core.Message, all []core.Label, nameMap map[string]string) LabelHealth {
	aggs, order := aggregateUserLabels(messages)

	var health LabelHealth
	seen := map[string]struct{}{}
	for _, id := range order {
		seen[id] = struct{}{}
		agg := aggs[id]
		rate := percentage(agg.count-agg.unread, agg.count)
		if rate >= 30 {
			health.WorkingWell++
		} else if rate < 10 && agg.count >= 20 {
			health.NeedsAttention++
		}
	}
	health.TotalUserLabels = len(order)

	for _, label := range all {
		if label.Type == "system" || labels.IsSystemLabel(label.ID) {
			continue
		}
		if _, ok := seen[label.ID]; ok {
			continue
		}
		health.TotalUserLabels++
		health.Abandoned++
	}

	health.RedundantPairs = len(LabelOverlaps(messages, nameMap, 80))

	read := 0
	for _, msg := range messages {
		if !msg.IsUnread {
			read++
		}
	}
	health.InboxReadRate = percentage(read, len(messages))
	return health
}

// LabelSuggestion proposes a new label for an unlabeled sender-domain
// cluster the user actually reads.
type LabelSuggestion struct {
	Label          string
	Domain         string
	Count          int
	ReadRate       float64
	SampleSubjects []string
}

var marketingSignals = []string{"unsubscribe", "opt out", "opt-out", "preferences", "manage subscriptions"}

func looksLikeMarketing(msg core.Message) bool {
	for _, l := range msg.Labels {
		if l == "CATEGORY_PROMOTIONS" {
			return true
		}
	}
	text := strings.ToLower(msg.Subject) + " " + strings.ToLower(msg.Snippet)
	for _, kw := range marketingSignals {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// SuggestLabels clusters unlabeled, non-marketing messages by sender
// domain and proposes a label for clusters with at least minClusterSize
// messages read at minReadRate percent or better. Sorted by cluster size
// descending.
func SuggestLabels(messages []core.Message, minClusterSize int, minReadRate float64) []LabelSuggestion {
	clusters := map[string][]core.Message{}
	var order []string
	for _, msg := range messages {
		if labels.HasUserLabels(msg) || looksLikeMarketing(msg) {
			continue
		}
		domain := senderDomain(msg.Sender)
		if domain == "" {
			continue
		}
		if _, ok := clusters[domain]; !ok {
			order = append(order, domain)
		}
		clusters[domain] = append(clusters[domain], msg)
	}

	var out []LabelSuggestion
	for _, domain := range order {
		msgs := clusters[domain]
		if len(msgs) < minClusterSize {
			continue
		}
		read := 0
		for _, msg := range msgs {
			if !msg.IsUnread {
				read++
			}
		}
		rate := percentage(read, len(msgs))
		if rate < minReadRate {
			continue
		}
		samples := make([]string, 0, 3)
		for i := 0; i < len(msgs) && i < 3; i++ {
			subject := msgs[i].Subject
			if len(subject) > 60 {
				subject = subject[:60]
			}
			samples = append(samples, subject)
		}
		out = append(out, LabelSuggestion{
			Label:          labelNameForDomain(domain),
			Domain:         domain,
			Count:          len(msgs),
			ReadRate:       rate,
			SampleSubjects: samples,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func labelNameForDomain(domain string) string {
	name := domain
	if dot := strings.Index(domain, "."); dot > 0 {
		name = domain[:dot]
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
