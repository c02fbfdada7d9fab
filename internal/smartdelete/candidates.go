package smartdelete

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/labels"
)

// safetyTiers are four contiguous bands covering [0,100]; every integer
// score maps to exactly one tier.
var safetyTiers = []core.SafetyTier{
	{Name: "very_safe", Label: "Very Safe", Color: "green", Min: 90, Max: 100},
	{Name: "likely_safe", Label: "Likely Safe", Color: "yellow", Min: 70, Max: 89},
	{Name: "review", Label: "Review Carefully", Color: "orange", Min: 50, Max: 69},
	{Name: "keep", Label: "Keep", Color: "red", Min: 0, Max: 49},
}

// SafetyTierFor returns the tier containing score. Out-of-range values
// should not occur given clamping; they fall back to "keep".
func SafetyTierFor(score int) core.SafetyTier {
	for _, tier := range safetyTiers {
		if score >= tier.Min && score <= tier.Max {
			return tier
		}
	}
	return safetyTiers[len(safetyTiers)-1]
}

// SafetyTiers returns the tier table, safest first.
func SafetyTiers() []core.SafetyTier {
	out := make([]core.SafetyTier, len(safetyTiers))
	copy(out, safetyTiers)
	return out
}

// FindOptions controls candidate selection.
type FindOptions struct {
	MinScore          int
	IncludeBreakdown  bool
	ExcludeExceptions bool
}

// DefaultMinScore is the threshold used when the caller doesn't specify one.
const DefaultMinScore = 50

// Finder orchestrates the label gate and the scorer over message
// collections and produces sorted, actionable outputs.
type Finder struct {
	scorer *Scorer
	logger *zap.Logger
}

// NewFinder creates a candidate finder.
func NewFinder(scorer *Scorer, logger *zap.Logger) *Finder {
	return &Finder{scorer: scorer, logger: logger}
}

// FindCandidates filters to unlabeled messages, scores each, and returns
// those at or above the threshold sorted by score descending. The sort is
// stable: candidates with equal scores keep their original relative order.
func (f *Finder) FindCandidates(messages []core.Message, userCtx *core.UserContext, opts FindOptions) []core.DeletionCandidate {
	var candidates []core.DeletionCandidate

	for _, msg := range labels.FilterUnlabeled(messages) {
		result := f.scorer.CalculateSafetyScore(msg, userCtx)
		if opts.ExcludeExceptions && result.HasExceptions {
			continue
		}
		if result.Score < opts.MinScore {
			continue
		}

		candidate := core.DeletionCandidate{
			MessageID:      msg.MessageID,
			ThreadID:       msg.ThreadID,
			Sender:         msg.Sender,
			Subject:        msg.Subject,
			Date:           msg.Date,
			Score:          result.Score,
			Tier:           SafetyTierFor(result.Score),
			IsUnread:       msg.IsUnread,
			HasAttachments: msg.HasAttachments,
			Labels:         msg.Labels,
			HasExceptions:  result.HasExceptions,
			Exceptions:     result.Exceptions,
		}
		if opts.IncludeBreakdown {
			breakdown := f.scorer.ScoreBreakdown(msg, userCtx)
			candidate.Breakdown = &breakdown
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if f.logger != nil {
		f.logger.Debug("Found deletion candidates",
			zap.Int("total_messages", len(messages)),
			zap.Int("candidates", len(candidates)),
			zap.Int("min_score", opts.MinScore))
	}
	return candidates
}

// Summary buckets the unlabeled subset into tiers. TotalMessages still
// reports the full input count for context.
func (f *Finder) Summary(messages []core.Message, userCtx *core.UserContext) core.DeletionSummary {
	unlabeled := labels.FilterUnlabeled(messages)

	tierCounts := make(map[string]int, len(safetyTiers))
	for _, tier := range safetyTiers {
		tierCounts[tier.Name] = 0
	}

	exceptions := 0
	for _, msg := range unlabeled {
		result := f.scorer.CalculateSafetyScore(msg, userCtx)
		tierCounts[SafetyTierFor(result.Score).Name]++
		if result.HasExceptions {
			exceptions++
		}
	}

	return core.DeletionSummary{
		TotalMessages:   len(messages),
		UnlabeledCount:  len(unlabeled),
		TierCounts:      tierCounts,
		Deletable:       tierCounts["very_safe"] + tierCounts["likely_safe"],
		NeedsReview:     tierCounts["review"],
		Keep:            tierCounts["keep"],
		ExceptionsCount: exceptions,
	}
}

// Bulk recommendation defaults.
const (
	DefaultMinSenderCount = 5
	DefaultMinAvgScore    = 80.0
)

// BulkRecommendations groups unlabeled messages by sender and recommends
// senders whose volume and mean score both clear the thresholds, sorted by
// mean score descending.
func (f *Finder) BulkRecommendations(messages []core.Message, userCtx *core.UserContext, minSenderCount int, minAvgScore float64) []core.SenderRecommendation {
	scoresBySender := map[string][]int{}
	var senderOrder []string

	for _, msg := range labels.FilterUnlabeled(messages) {
		if _, seen := scoresBySender[msg.Sender]; !seen {
			senderOrder = append(senderOrder, msg.Sender)
		}
		result := f.scorer.CalculateSafetyScore(msg, userCtx)
		scoresBySender[msg.Sender] = append(scoresBySender[msg.Sender], result.Score)
	}

	var recs []core.SenderRecommendation
	for _, sender := range senderOrder {
		scores := scoresBySender[sender]
		if len(scores) < minSenderCount {
			continue
		}
		sum, min, max := 0, scores[0], scores[0]
		for _, s := range scores {
			sum += s
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
		avg := roundTo2(float64(sum) / float64(len(scores)))
		if avg < minAvgScore {
			continue
		}
		recs = append(recs, core.SenderRecommendation{
			Sender:   sender,
			Count:    len(scores),
			AvgScore: avg,
			MinScore: min,
			MaxScore: max,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].AvgScore > recs[j].AvgScore
	})
	return recs
}

// impactThresholds is the fixed ladder reported by EstimateCleanupImpact.
var impactThresholds = []int{90, 80, 70, 60, 50}

// RecommendedThreshold is the default score cutoff suggested to users.
const RecommendedThreshold = 70

// EstimateCleanupImpact reports candidate counts at each ladder threshold,
// as raw counts and as percentages of the unlabeled population.
func (f *Finder) EstimateCleanupImpact(messages []core.Message, userCtx *core.UserContext) core.CleanupImpact {
	unlabeled := labels.FilterUnlabeled(messages)

	scores := make([]int, 0, len(unlabeled))
	for _, msg := range unlabeled {
		scores = append(scores, f.scorer.CalculateSafetyScore(msg, userCtx).Score)
	}

	byThreshold := make(map[int]core.ThresholdImpact, len(impactThresholds))
	for _, threshold := range impactThresholds {
		count := 0
		for _, s := range scores {
			if s >= threshold {
				count++
			}
		}
		pct := 0.0
		if len(unlabeled) > 0 {
			pct = roundTo2(float64(count) / float64(len(unlabeled)) * 100)
		}
		byThreshold[threshold] = core.ThresholdImpact{Count: count, Percentage: pct}
	}

	return core.CleanupImpact{
		TotalMessages:        len(messages),
		UnlabeledCount:       len(unlabeled),
		ByThreshold:          byThreshold,
		RecommendedThreshold: RecommendedThreshold,
	}
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
