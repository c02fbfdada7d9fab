package analytics

import (
	"sort"

	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/labels"
)

// LabelUsage pairs a user label with how many cached messages carry it.
type LabelUsage struct {
	LabelID string
	Name    string
	Count   int
}

// LabelStats counts usage of each user label across the message set.
// System labels are excluded. nameMap translates label IDs to display
// names; IDs without a mapping fall back to the raw ID.
func LabelStats(messages []core.Message, nameMap map[string]string) []LabelUsage {
	counts := map[string]int{}
	var order []string
	for _, msg := range messages {
		for _, id := range msg.Labels {
			if labels.IsSystemLabel(id) {
				continue
			}
			if _, seen := counts[id]; !seen {
				order = append(order, id)
			}
			counts[id]++
		}
	}

	out := make([]LabelUsage, 0, len(order))
	for _, id := range order {
		name := nameMap[id]
		if name == "" {
			name = id
		}
		out = append(out, LabelUsage{LabelID: id, Name: name, Count: counts[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// RedundantLabels returns user labels used on fewer than minCount messages,
// including labels with zero usage. These are merge or delete candidates.
func RedundantLabels(messages []core.Message, all []core.Label, minCount int) []LabelUsage {
	counts := map[string]int{}
	for _, msg := range messages {
		for _, id := range msg.Labels {
			counts[id]++
		}
	}

	var out []LabelUsage
	for _, label := range all {
		if labels.IsSystemLabel(label.ID) {
			continue
		}
		if counts[label.ID] < minCount {
			out = append(out, LabelUsage{LabelID: label.ID, Name: label.Name, Count: counts[label.ID]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count < out[j].Count })
	return out
}
