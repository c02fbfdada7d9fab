package smartdelete

import (
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/casey/mailsweep/internal/core"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testScorer() *Scorer {
	return NewScorer(nil, WithClock(func() time.Time { return testNow }))
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestScoreOldUnreadPromo(t *testing.T) {
	s := testScorer()
	msg := core.Message{
		MessageID: "m1",
		ThreadID:  "t1",
		Date:      daysAgo(40),
		Sender:    "deals@shop.com",
		Subject:   "50% off sale",
		Snippet:   "unsubscribe to stop receiving these offers",
		IsUnread:  true,
	}

	result := s.CalculateSafetyScore(msg, nil)
	be.Equal(t, result.Score, 100)
	be.True(t, result.Score >= 70)
}

func TestScoreRepliedWorkMailWithAttachment(t *testing.T) {
	s := testScorer()
	msg := core.Message{
		MessageID:      "m2",
		ThreadID:       "t2",
		Date:           daysAgo(2),
		Sender:         "alice@acme.com",
		Subject:        "Re: project review",
		HasAttachments: true,
	}
	userCtx := &core.UserContext{
		UserDomain:     "acme.com",
		RepliedThreads: map[string]struct{}{"t2": {}},
	}

	result := s.CalculateSafetyScore(msg, userCtx)
	be.Equal(t, result.Score, 0)
	be.True(t, result.Score < 50)
}

func TestScoreMissingDateCountsAsRecent(t *testing.T) {
	s := testScorer()
	msg := core.Message{
		MessageID: "m3",
		Sender:    "x@y.com",
		Subject:   "hello world",
	}

	// base 50, no attachments +5, no reply +5, recent -15
	result := s.CalculateSafetyScore(msg, nil)
	be.Equal(t, result.Score, 45)
}

func TestScoreBounds(t *testing.T) {
	s := testScorer()
	messages := []core.Message{
		{MessageID: "a", Date: daysAgo(90), Sender: "deals@shop.com", Subject: "sale! unsubscribe opt out", IsUnread: true},
		{MessageID: "b", Date: daysAgo(1), Sender: "me@acme.com", Subject: "Re: contract", HasAttachments: true, Labels: []string{"STARRED"}},
		{MessageID: "c", Sender: "mid@example.com", Subject: "something"},
	}
	userCtx := &core.UserContext{
		UserDomain:     "acme.com",
		RepliedThreads: map[string]struct{}{"": {}},
	}

	for _, msg := range messages {
		result := s.CalculateSafetyScore(msg, userCtx)
		be.True(t, result.Score >= 0)
		be.True(t, result.Score <= 100)
	}
}

func TestUnsubscribeLanguageAddsTwenty(t *testing.T) {
	s := testScorer()
	without := core.Message{MessageID: "m4", Date: daysAgo(40), Sender: "info@example.com", Subject: "catalog update"}
	with := without
	with.Snippet = "opt out of future mailings"

	scoreWithout := s.CalculateSafetyScore(without, nil).Score
	scoreWith := s.CalculateSafetyScore(with, nil).Score
	be.Equal(t, scoreWith-scoreWithout, 20)
}

func TestUnreadRaisesScore(t *testing.T) {
	s := testScorer()
	read := core.Message{MessageID: "m20", Date: daysAgo(40), Sender: "info@example.com", Subject: "catalog update"}
	unread := read
	unread.IsUnread = true

	readScore := s.CalculateSafetyScore(read, nil).Score
	unreadScore := s.CalculateSafetyScore(unread, nil).Score
	be.True(t, unreadScore > readScore)
	be.Equal(t, unreadScore-readScore, 15)
}

func TestAttachmentsLowerScore(t *testing.T) {
	s := testScorer()
	plain := core.Message{MessageID: "m21", Date: daysAgo(40), Sender: "info@example.com", Subject: "catalog update"}
	attached := plain
	attached.HasAttachments = true

	plainScore := s.CalculateSafetyScore(plain, nil).Score
	attachedScore := s.CalculateSafetyScore(attached, nil).Score
	be.True(t, attachedScore < plainScore)
	// Loses the no-attachment bonus and takes the attachment penalty.
	be.Equal(t, plainScore-attachedScore, 35)
}

func TestStarredLowersScore(t *testing.T) {
	s := testScorer()
	plain := core.Message{MessageID: "m22", Date: daysAgo(40), Sender: "info@example.com", Subject: "catalog update"}
	starred := plain
	starred.Labels = []string{"STARRED"}

	plainScore := s.CalculateSafetyScore(plain, nil).Score
	starredScore := s.CalculateSafetyScore(starred, nil).Score
	be.True(t, starredScore < plainScore)
	be.Equal(t, plainScore-starredScore, 20)
}

func TestBreakdownMatchesScore(t *testing.T) {
	s := testScorer()
	messages := []core.Message{
		{MessageID: "m5", Date: daysAgo(40), Sender: "deals@shop.com", Subject: "50% off sale", Snippet: "unsubscribe now", IsUnread: true},
		{MessageID: "m6", Date: daysAgo(2), Sender: "alice@acme.com", Subject: "Re: agenda", HasAttachments: true},
		{MessageID: "m7", Sender: "x@y.com", Subject: "hi"},
	}

	for _, msg := range messages {
		breakdown := s.ScoreBreakdown(msg, nil)
		be.Equal(t, breakdown.Score, s.CalculateSafetyScore(msg, nil).Score)

		sum := 0
		for _, factor := range breakdown.Factors {
			sum += factor.Impact
		}
		be.Equal(t, clampScore(sum), breakdown.Score)
		be.Equal(t, breakdown.Factors[0].Factor, "Base score")
		be.Equal(t, breakdown.Factors[0].Impact, 50)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := testScorer()
	msg := core.Message{MessageID: "m8", Date: daysAgo(33), Sender: "news@site.com", Subject: "weekly digest", IsUnread: true}

	first := s.CalculateSafetyScore(msg, nil)
	for i := 0; i < 5; i++ {
		be.Equal(t, s.CalculateSafetyScore(msg, nil).Score, first.Score)
	}
}

func TestMessageAgeDays(t *testing.T) {
	be.Equal(t, messageAgeDays(core.Message{}, testNow), 0)
	be.Equal(t, messageAgeDays(core.Message{Date: daysAgo(10)}, testNow), 10)
	// future dates degrade to zero age
	be.Equal(t, messageAgeDays(core.Message{Date: testNow.AddDate(0, 0, 3)}, testNow), 0)
}
