package smartdelete

import (
	"regexp"
	"strings"
	"time"

	"github.com/casey/mailsweep/internal/core"
)

const baseScore = 50

// ruleEnv carries per-message values computed once and shared by every rule.
type ruleEnv struct {
	msg     core.Message
	userCtx *core.UserContext
	content string // lower-cased subject + snippet
	ageDays int
	now     time.Time
}

func newRuleEnv(msg core.Message, userCtx *core.UserContext, now time.Time) ruleEnv {
	return ruleEnv{
		msg:     msg,
		userCtx: userCtx,
		content: strings.ToLower(msg.Subject) + " " + strings.ToLower(msg.Snippet),
		ageDays: messageAgeDays(msg, now),
		now:     now,
	}
}

// messageAgeDays degrades to 0 for a missing date rather than failing.
func messageAgeDays(msg core.Message, now time.Time) int {
	if msg.Date.IsZero() {
		return 0
	}
	age := now.Sub(msg.Date)
	if age < 0 {
		return 0
	}
	return int(age.Hours() / 24)
}

// scoreRule is one independently evaluated scoring signal. The total score
// and the explanatory breakdown both fold over the same rule list, so they
// can never drift apart.
type scoreRule struct {
	name    string
	points  int
	applies func(e ruleEnv) bool
}

var unsubscribePhrases = []string{
	"unsubscribe",
	"opt out",
	"opt-out",
	"manage preferences",
	"email preferences",
	"stop receiving",
	"remove yourself",
}

var transactionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`order\s*#?\d+`),
	regexp.MustCompile(`invoice\s*#?\d+`),
	regexp.MustCompile(`receipt`),
	regexp.MustCompile(`confirmation`),
	regexp.MustCompile(`payment`),
	regexp.MustCompile(`statement`),
	regexp.MustCompile(`contract`),
	regexp.MustCompile(`agreement`),
	regexp.MustCompile(`password reset`),
	regexp.MustCompile(`verification code`),
	regexp.MustCompile(`security alert`),
	regexp.MustCompile(`account\s+alert`),
}

func hasUnsubscribeLanguage(e ruleEnv) bool {
	for _, phrase := range unsubscribePhrases {
		if strings.Contains(e.content, phrase) {
			return true
		}
	}
	return false
}

func hasTransactionalKeywords(e ruleEnv) bool {
	for _, re := range transactionalPatterns {
		if re.MatchString(e.content) {
			return true
		}
	}
	return false
}

func isStarredOrImportant(e ruleEnv) bool {
	for _, l := range e.msg.Labels {
		if l == "STARRED" || l == "IMPORTANT" {
			return true
		}
	}
	return false
}

func isFromUserDomain(e ruleEnv) bool {
	domain := e.userCtx.Domain()
	if domain == "" {
		return false
	}
	return strings.Contains(strings.ToLower(e.msg.Sender), strings.ToLower(domain))
}

// inMultiMessageThread uses the subject prefix as a thread-size proxy; real
// thread counts would need the threads API.
func inMultiMessageThread(e ruleEnv) bool {
	subject := strings.ToLower(e.msg.Subject)
	return strings.HasPrefix(subject, "re:") || strings.HasPrefix(subject, "fwd:")
}

// scoringRules builds the full additive rule list. Positive rules push
// toward "safe to delete", negative ones toward "keep"; each is evaluated
// independently and the results simply sum.
func scoringRules(classify ClassifyFunc) []scoreRule {
	return []scoreRule{
		{"Unsubscribe language", +20, hasUnsubscribeLanguage},
		{"Unread since receipt", +15, func(e ruleEnv) bool { return e.msg.IsUnread }},
		{"Sender previously deleted", +10, func(e ruleEnv) bool { return e.userCtx.SenderDeleted(e.msg.Sender) }},
		{"Older than 30 days", +10, func(e ruleEnv) bool { return e.ageDays > 30 }},
		{"Older than 60 days", +5, func(e ruleEnv) bool { return e.ageDays > 60 }},
		{"No attachments", +5, func(e ruleEnv) bool { return !e.msg.HasAttachments }},
		{"No reply in thread", +5, func(e ruleEnv) bool { return !e.userCtx.RepliedInThread(e.msg.ThreadID) }},
		{"Promotional classification", +5, func(e ruleEnv) bool {
			category := classify(e.msg, e.userCtx.Domain())
			return category == "marketing" || category == "newsletter"
		}},
		{"User replied in thread", -40, func(e ruleEnv) bool { return e.userCtx.RepliedInThread(e.msg.ThreadID) }},
		{"Has attachments", -30, func(e ruleEnv) bool { return e.msg.HasAttachments }},
		{"From user's domain", -25, isFromUserDomain},
		{"Starred or important", -20, isStarredOrImportant},
		{"Recent message", -15, func(e ruleEnv) bool { return e.ageDays < 7 }},
		{"High engagement sender", -10, func(e ruleEnv) bool { return e.userCtx.HighEngagement(e.msg.Sender) }},
		{"Transactional keywords", -10, hasTransactionalKeywords},
		{"Part of thread", -5, inMultiMessageThread},
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
