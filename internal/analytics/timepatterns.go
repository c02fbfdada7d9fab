package analytics

import (
	"time"

	"github.com/casey/mailsweep/internal/core"
)

// TimeMatrix is message counts indexed by [weekday][hour], with Sunday as 0.
type TimeMatrix [7][24]int

// TimePatterns buckets messages into a weekday-by-hour matrix. Messages
// without a date are skipped.
func TimePatterns(messages []core.Message) TimeMatrix {
	var matrix TimeMatrix
	for _, msg := range messages {
		if msg.Date.IsZero() {
			continue
		}
		matrix[int(msg.Date.Weekday())][msg.Date.Hour()]++
	}
	return matrix
}

// BusiestHour returns the weekday and hour with the highest count. Ties go
// to the earliest slot.
func (m TimeMatrix) BusiestHour() (time.Weekday, int) {
	bestDay, bestHour, best := 0, 0, -1
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			if m[day][hour] > best {
				bestDay, bestHour, best = day, hour, m[day][hour]
			}
		}
	}
	return time.Weekday(bestDay), bestHour
}

// DayDistribution summarizes per-weekday volume.
type DayDistribution struct {
	Counts       [7]int
	Busiest      time.Weekday
	Quietest     time.Weekday
	WeekdayTotal int
	WeekendTotal int
}

// DayOfWeekDistribution computes per-weekday counts plus the busiest and
// quietest days and a weekday/weekend split.
func DayOfWeekDistribution(messages []core.Message) DayDistribution {
	var dist DayDistribution
	for _, msg := range messages {
		if msg.Date.IsZero() {
			continue
		}
		day := msg.Date.Weekday()
		dist.Counts[int(day)]++
		if day == time.Saturday || day == time.Sunday {
			dist.WeekendTotal++
		} else {
			dist.WeekdayTotal++
		}
	}

	busiest, quietest := 0, 0
	for day := 1; day < 7; day++ {
		if dist.Counts[day] > dist.Counts[busiest] {
			busiest = day
		}
		if dist.Counts[day] < dist.Counts[quietest] {
			quietest = day
		}
	}
	dist.Busiest = time.Weekday(busiest)
	dist.Quietest = time.Weekday(quietest)
	return dist
}
