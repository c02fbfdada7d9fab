package analytics

import (
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/casey/mailsweep/internal/core"
)

func TestOpenRate(t *testing.T) {
	messages := []core.Message{
		{MessageID: "a"},
		{MessageID: "b"},
		{MessageID: "c", IsUnread: true},
		{MessageID: "d"},
	}
	stats := OpenRate(messages)

	be.Equal(t, stats.Total, 4)
	be.Equal(t, stats.Read, 3)
	be.Equal(t, stats.Unread, 1)
	be.Equal(t, stats.OpenRate, 75.0)
}

func TestOpenRateEmpty(t *testing.T) {
	stats := OpenRate(nil)
	be.Equal(t, stats.OpenRate, 0.0)
}

func TestSenderEngagement(t *testing.T) {
	messages := []core.Message{
		{Sender: "a@x.com", IsUnread: true},
		{Sender: "a@x.com", IsUnread: true},
		{Sender: "a@x.com"},
		{Sender: "b@x.com"},
	}
	stats := SenderEngagement(messages)

	be.Equal(t, len(stats), 2)
	be.Equal(t, stats[0].Sender, "a@x.com")
	be.Equal(t, stats[0].Total, 3)
	be.Equal(t, stats[0].Unread, 2)
	be.Equal(t, stats[0].OpenRate, 33.33)
	be.Equal(t, stats[1].Sender, "b@x.com")
	be.Equal(t, stats[1].OpenRate, 100.0)
}

func TestHighAndLowEngagementSenders(t *testing.T) {
	var messages []core.Message
	for i := 0; i < 5; i++ {
		messages = append(messages, core.Message{Sender: "read@x.com"})
		messages = append(messages, core.Message{Sender: "ignored@x.com", IsUnread: true})
	}

	high := HighEngagementSenders(messages, 5, 60.0)
	be.Equal(t, len(high), 1)
	be.Equal(t, high[0].Sender, "read@x.com")

	low := LowEngagementSenders(messages, 5, 10.0)
	be.Equal(t, len(low), 1)
	be.Equal(t, low[0].Sender, "ignored@x.com")

	set := HighEngagementSenderSet(messages, 5, 60.0)
	_, ok := set["read@x.com"]
	be.True(t, ok)
	_, ok = set["ignored@x.com"]
	be.True(t, !ok)
}

func TestFrequentSenders(t *testing.T) {
	messages := []core.Message{
		{Sender: "a@x.com"},
		{Sender: "b@x.com"},
		{Sender: "a@x.com"},
		{Sender: "c@x.com"},
		{Sender: "a@x.com"},
		{Sender: "b@x.com"},
	}

	top := FrequentSenders(messages, 2)
	be.Equal(t, len(top), 2)
	be.Equal(t, top[0], SenderCount{Sender: "a@x.com", Count: 3})
	be.Equal(t, top[1], SenderCount{Sender: "b@x.com", Count: 2})

	all := FrequentSenders(messages, 0)
	be.Equal(t, len(all), 3)
}

func TestSenderDomains(t *testing.T) {
	messages := []core.Message{
		{Sender: "a@one.com"},
		{Sender: "b@one.com"},
		{Sender: "c@two.io"},
		{Sender: "no-at-sign"},
	}
	domains := SenderDomains(messages)

	be.Equal(t, len(domains), 2)
	be.Equal(t, domains[0], DomainCount{Domain: "one.com", Count: 2})
	be.Equal(t, domains[1], DomainCount{Domain: "two.io", Count: 1})
}

func TestOneTimeSenders(t *testing.T) {
	messages := []core.Message{
		{Sender: "repeat@x.com"},
		{Sender: "once@x.com"},
		{Sender: "repeat@x.com"},
		{Sender: "single@y.com"},
	}

	be.Equal(t, OneTimeSenders(messages), []string{"once@x.com", "single@y.com"})
}

func TestDayOfWeekDistribution(t *testing.T) {
	// 2025-06-02 is a Monday, 2025-06-07 a Saturday.
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 6, 7, 20, 0, 0, 0, time.UTC)
	messages := []core.Message{
		{Date: monday},
		{Date: monday.Add(time.Hour)},
		{Date: saturday},
		{}, // no date, skipped
	}
	dist := DayOfWeekDistribution(messages)

	be.Equal(t, dist.Counts[int(time.Monday)], 2)
	be.Equal(t, dist.Counts[int(time.Saturday)], 1)
	be.Equal(t, dist.Busiest, time.Monday)
	be.Equal(t, dist.WeekdayTotal, 2)
	be.Equal(t, dist.WeekendTotal, 1)
}

func TestTimePatternsBusiestHour(t *testing.T) {
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	messages := []core.Message{
		{Date: monday},
		{Date: monday.Add(5 * time.Minute)},
		{Date: monday.Add(3 * time.Hour)},
	}
	matrix := TimePatterns(messages)

	day, hour := matrix.BusiestHour()
	be.Equal(t, day, time.Monday)
	be.Equal(t, hour, 9)
	be.Equal(t, matrix[int(time.Monday)][9], 2)
}

func TestLabelStats(t *testing.T) {
	messages := []core.Message{
		{Labels: []string{"INBOX", "Label_1"}},
		{Labels: []string{"Label_1", "Label_2"}},
		{Labels: []string{"CATEGORY_PROMOTIONS"}},
	}
	nameMap := map[string]string{"Label_1": "Receipts"}

	stats := LabelStats(messages, nameMap)
	be.Equal(t, len(stats), 2)
	be.Equal(t, stats[0], LabelUsage{LabelID: "Label_1", Name: "Receipts", Count: 2})
	be.Equal(t, stats[1], LabelUsage{LabelID: "Label_2", Name: "Label_2", Count: 1})
}

func TestRedundantLabels(t *testing.T) {
	messages := []core.Message{
		{Labels: []string{"Label_1"}},
		{Labels: []string{"Label_1"}},
		{Labels: []string{"Label_1"}},
		{Labels: []string{"Label_2"}},
	}
	all := []core.Label{
		{ID: "Label_1", Name: "Busy", Type: "user"},
		{ID: "Label_2", Name: "Rare", Type: "user"},
		{ID: "Label_3", Name: "Empty", Type: "user"},
		{ID: "INBOX", Name: "INBOX", Type: "system"},
	}

	redundant := RedundantLabels(messages, all, 3)
	be.Equal(t, len(redundant), 2)
	be.Equal(t, redundant[0].Name, "Empty")
	be.Equal(t, redundant[0].Count, 0)
	be.Equal(t, redundant[1].Name, "Rare")
	be.Equal(t, redundant[1].Count, 1)
}
