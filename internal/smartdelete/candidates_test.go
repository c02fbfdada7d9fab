package smartdelete

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/casey/mailsweep/internal/core"
)

// promoMessage scores 100 under the fixed test clock: old, unread,
// unsubscribe language, promotional sender.
func promoMessage(id string) core.Message {
	return core.Message{
		MessageID: id,
		ThreadID:  "t-" + id,
		Date:      daysAgo(40),
		Sender:    "deals@shop.com",
		Subject:   "50% off sale",
		Snippet:   "unsubscribe to stop receiving these offers",
		IsUnread:  true,
		Labels:    []string{"INBOX", "UNREAD"},
	}
}

func testFinder() *Finder {
	return NewFinder(testScorer(), nil)
}

func TestSafetyTierTotality(t *testing.T) {
	for score := 0; score <= 100; score++ {
		tier := SafetyTierFor(score)
		be.True(t, score >= tier.Min)
		be.True(t, score <= tier.Max)
	}
}

func TestSafetyTierBoundaries(t *testing.T) {
	be.Equal(t, SafetyTierFor(0).Name, "keep")
	be.Equal(t, SafetyTierFor(49).Name, "keep")
	be.Equal(t, SafetyTierFor(50).Name, "review")
	be.Equal(t, SafetyTierFor(69).Name, "review")
	be.Equal(t, SafetyTierFor(70).Name, "likely_safe")
	be.Equal(t, SafetyTierFor(89).Name, "likely_safe")
	be.Equal(t, SafetyTierFor(90).Name, "very_safe")
	be.Equal(t, SafetyTierFor(100).Name, "very_safe")
}

func TestFindCandidatesSkipsUserLabeledMail(t *testing.T) {
	finder := testFinder()

	labeled := promoMessage("labeled")
	labeled.Labels = []string{"INBOX", "Label_42"}

	candidates := finder.FindCandidates(
		[]core.Message{promoMessage("keep-me"), labeled},
		nil, FindOptions{MinScore: DefaultMinScore})

	be.Equal(t, len(candidates), 1)
	be.Equal(t, candidates[0].MessageID, "keep-me")
	be.Equal(t, candidates[0].Score, 100)
	be.Equal(t, candidates[0].Tier.Name, "very_safe")
}

func TestFindCandidatesThresholdAndSort(t *testing.T) {
	finder := testFinder()

	low := core.Message{MessageID: "low", Sender: "x@y.com", Subject: "hello"} // scores 45
	mid := promoMessage("mid")
	mid.IsUnread = false // drops to 95

	candidates := finder.FindCandidates(
		[]core.Message{low, mid, promoMessage("high")},
		nil, FindOptions{MinScore: 50})

	be.Equal(t, len(candidates), 2)
	be.Equal(t, candidates[0].MessageID, "high")
	be.Equal(t, candidates[1].MessageID, "mid")
	be.True(t, candidates[0].Score >= candidates[1].Score)
}

func TestFindCandidatesExcludeExceptions(t *testing.T) {
	finder := testFinder()

	withOrder := promoMessage("order")
	withOrder.Subject = "50% off sale on order #123456"

	all := finder.FindCandidates(
		[]core.Message{withOrder, promoMessage("clean")},
		nil, FindOptions{MinScore: 50})
	be.Equal(t, len(all), 2)

	filtered := finder.FindCandidates(
		[]core.Message{withOrder, promoMessage("clean")},
		nil, FindOptions{MinScore: 50, ExcludeExceptions: true})
	be.Equal(t, len(filtered), 1)
	be.Equal(t, filtered[0].MessageID, "clean")
}

func TestFindCandidatesBreakdownOnRequest(t *testing.T) {
	finder := testFinder()

	plain := finder.FindCandidates([]core.Message{promoMessage("a")}, nil, FindOptions{MinScore: 50})
	be.True(t, plain[0].Breakdown == nil)

	detailed := finder.FindCandidates([]core.Message{promoMessage("a")}, nil,
		FindOptions{MinScore: 50, IncludeBreakdown: true})
	be.True(t, detailed[0].Breakdown != nil)
	be.Equal(t, detailed[0].Breakdown.Score, detailed[0].Score)
}

func TestSummaryCountsTiersOverUnlabeled(t *testing.T) {
	finder := testFinder()

	labeled := promoMessage("labeled")
	labeled.Labels = []string{"Label_1"}
	low := core.Message{MessageID: "low", Sender: "x@y.com", Subject: "hello"} // 45 -> keep

	summary := finder.Summary([]core.Message{promoMessage("a"), low, labeled}, nil)

	be.Equal(t, summary.TotalMessages, 3)
	be.Equal(t, summary.UnlabeledCount, 2)
	be.Equal(t, summary.TierCounts["very_safe"], 1)
	be.Equal(t, summary.TierCounts["keep"], 1)
	be.Equal(t, summary.Deletable, 1)
	be.Equal(t, summary.Keep, 1)
}

func TestBulkRecommendations(t *testing.T) {
	finder := testFinder()

	var messages []core.Message
	for i := 0; i < 5; i++ {
		msg := promoMessage(string(rune('a' + i)))
		messages = append(messages, msg)
	}
	// Too few messages from this sender to recommend.
	rare := core.Message{MessageID: "rare", Sender: "rare@x.com", Subject: "hi"}
	messages = append(messages, rare)

	recs := finder.BulkRecommendations(messages, nil, DefaultMinSenderCount, DefaultMinAvgScore)

	be.Equal(t, len(recs), 1)
	be.Equal(t, recs[0].Sender, "deals@shop.com")
	be.Equal(t, recs[0].Count, 5)
	be.Equal(t, recs[0].AvgScore, 100.0)
	be.Equal(t, recs[0].MinScore, 100)
	be.Equal(t, recs[0].MaxScore, 100)
}

func TestEstimateCleanupImpact(t *testing.T) {
	finder := testFinder()

	low := core.Message{MessageID: "low", Sender: "x@y.com", Subject: "hello"} // 45
	labeled := promoMessage("labeled")
	labeled.Labels = []string{"Label_1"}

	impact := finder.EstimateCleanupImpact(
		[]core.Message{promoMessage("a"), promoMessage("b"), low, labeled}, nil)

	be.Equal(t, impact.TotalMessages, 4)
	be.Equal(t, impact.UnlabeledCount, 3)
	be.Equal(t, impact.RecommendedThreshold, 70)
	be.Equal(t, impact.ByThreshold[90].Count, 2)
	be.Equal(t, impact.ByThreshold[90].Percentage, 66.67)
	be.Equal(t, impact.ByThreshold[50].Count, 2)
}

func TestEstimateCleanupImpactEmpty(t *testing.T) {
	impact := testFinder().EstimateCleanupImpact(nil, nil)

	be.Equal(t, impact.UnlabeledCount, 0)
	be.Equal(t, impact.ByThreshold[70].Count, 0)
	be.Equal(t, impact.ByThreshold[70].Percentage, 0.0)
}
