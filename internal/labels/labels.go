package labels

import (
	"strings"

	"github.com/casey/mailsweep/internal/core"
)

// systemLabels is the fixed set of Gmail-managed labels. A message carrying
// only these has never been organized by the user.
var systemLabels = map[string]struct{}{
	"INBOX":     {},
	"UNREAD":    {},
	"SENT":      {},
	"DRAFT":     {},
	"SPAM":      {},
	"TRASH":     {},
	"STARRED":   {},
	"IMPORTANT": {},
}

const categoryPrefix = "CATEGORY_"

// IsSystemLabel reports whether a label is managed by Gmail rather than
// created by the user. All CATEGORY_* tab labels count as system.
func IsSystemLabel(name string) bool {
	if _, ok := systemLabels[name]; ok {
		return true
	}
	return strings.HasPrefix(name, categoryPrefix)
}

// HasUserLabels reports whether the message carries at least one
// user-created label. A missing label set counts as no user labels.
func HasUserLabels(msg core.Message) bool {
	for _, l := range msg.Labels {
		if !IsSystemLabel(l) {
			return true
		}
	}
	return false
}

// UserLabels returns the user-created subset of a label list.
func UserLabels(names []string) []string {
	var out []string
	for _, l := range names {
		if !IsSystemLabel(l) {
			out = append(out, l)
		}
	}
	return out
}

// FilterUnlabeled returns the messages bearing only system labels. This is
// the gate that keeps deliberately organized mail out of Smart Delete; it
// runs before any scoring, unconditionally.
func FilterUnlabeled(messages []core.Message) []core.Message {
	out := make([]core.Message, 0, len(messages))
	for _, msg := range messages {
		if !HasUserLabels(msg) {
			out = append(out, msg)
		}
	}
	return out
}
