package taxonomy

// CategoryRule describes how to recognize one sender-type category.
// Lower Priority wins when several categories match.
type CategoryRule struct {
	Description     string
	Priority        int
	FromPatterns    []string
	SubjectPatterns []string
	Signals         []string
	LowVolume       bool
}

// CategoryUnknown is the fallback when no rule matches.
const CategoryUnknown = "unknown"

// SenderTypes maps category names to their recognition rules.
var SenderTypes = map[string]CategoryRule{
	"newsletter": {
		Description:     "Recurring editorial mail the user subscribed to",
		Priority:        10,
		FromPatterns:    []string{"newsletter", "news@", "digest", "weekly@", "bulletin"},
		SubjectPatterns: []string{"newsletter", "digest", "weekly update", "this week in"},
		Signals:         []string{"view in browser", "email preferences", "read online"},
	},
	"marketing": {
		Description:     "Promotional mail trying to sell something",
		Priority:        20,
		FromPatterns:    []string{"promo", "marketing", "offers", "deals", "sale@"},
		SubjectPatterns: []string{"% off", "sale", "deal", "limited time", "discount", "free shipping", "last chance"},
		Signals:         []string{"unsubscribe", "shop now", "don't miss", "exclusive offer"},
	},
	"transactional": {
		Description:     "Receipts, orders, and shipping notifications",
		Priority:        30,
		FromPatterns:    []string{"order", "receipt", "billing", "invoice", "shipping", "store@"},
		SubjectPatterns: []string{"order", "receipt", "invoice", "confirmation", "shipped", "payment received", "your delivery"},
		Signals:         []string{"order number", "tracking", "total charged"},
	},
	"social": {
		Description:     "Social network notifications",
		Priority:        35,
		FromPatterns:    []string{"facebook", "twitter", "linkedin", "instagram", "pinterest", "reddit", "notifications@"},
		SubjectPatterns: []string{"connection request", "mentioned you", "new follower", "friend request", "viewed your", "new notification"},
		Signals:         []string{"wants to connect", "follow", "your profile"},
	},
	"automated": {
		Description:     "Machine-generated alerts and account mail",
		Priority:        40,
		FromPatterns:    []string{"noreply", "no-reply", "donotreply", "security@", "accounts@", "support@"},
		SubjectPatterns: []string{"password reset", "verify your", "security alert", "sign-in", "reminder", "your account"},
		Signals:         []string{"do not reply", "automatically generated", "verification code"},
	},
	"professional": {
		Description:     "Work mail from the user's organization or peers",
		Priority:        60,
		SubjectPatterns: []string{"meeting", "project", "review", "proposal", "agenda", "follow up"},
		Signals:         []string{"attached", "schedule a call", "per our conversation"},
	},
	"personal": {
		Description:     "One-to-one mail from consumer addresses",
		Priority:        90,
		FromPatterns:    []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "icloud.com"},
		LowVolume:       true,
	},
	CategoryUnknown: {
		Description: "No recognizable sender-type signals",
		Priority:    999,
	},
}

// CategoryActions suggests what to do with mail in each category.
var CategoryActions = map[string][]string{
	"newsletter":    {"unsubscribe if unread", "auto-archive after 30 days"},
	"marketing":     {"bulk delete", "unsubscribe"},
	"transactional": {"keep 90 days", "archive"},
	"social":        {"mute in-app instead", "bulk delete"},
	"automated":     {"review security alerts", "delete the rest"},
	"professional":  {"keep", "label by project"},
	"personal":      {"keep"},
}
