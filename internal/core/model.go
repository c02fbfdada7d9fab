package core

import (
	"time"
)

// Message is a cached snapshot of a Gmail message's metadata.
type Message struct {
	MessageID      string
	ThreadID       string
	Date           time.Time // zero when the Date header was missing or unparseable
	Sender         string    // lower-cased email address
	Recipients     string
	Subject        string
	Snippet        string
	Labels         []string
	IsUnread       bool
	HasAttachments bool
}

// UserContext carries caller-supplied behavioral signals that modulate
// safety scoring. All fields are optional; a nil *UserContext is valid.
type UserContext struct {
	UserDomain            string
	DeletedSenders        map[string]struct{}
	RepliedThreads        map[string]struct{}
	RepliedSenders        map[string]struct{}
	HighEngagementSenders map[string]struct{}
	ImportantNames        []string
}

// SenderDeleted reports whether the sender was previously removed by the user.
func (c *UserContext) SenderDeleted(sender string) bool {
	if c == nil {
		return false
	}
	_, ok := c.DeletedSenders[sender]
	return ok
}

// RepliedInThread reports whether the user has replied in the given thread.
func (c *UserContext) RepliedInThread(threadID string) bool {
	if c == nil || threadID == "" {
		return false
	}
	_, ok := c.RepliedThreads[threadID]
	return ok
}

// RepliedToSender reports whether the user has ever replied to the sender.
func (c *UserContext) RepliedToSender(sender string) bool {
	if c == nil {
		return false
	}
	_, ok := c.RepliedSenders[sender]
	return ok
}

// HighEngagement reports whether the sender is one the user frequently engages with.
func (c *UserContext) HighEngagement(sender string) bool {
	if c == nil {
		return false
	}
	_, ok := c.HighEngagementSenders[sender]
	return ok
}

// Domain returns the user's organization domain, or "" when unknown.
func (c *UserContext) Domain() string {
	if c == nil {
		return ""
	}
	return c.UserDomain
}

// Names returns the important-name watch list.
func (c *UserContext) Names() []string {
	if c == nil {
		return nil
	}
	return c.ImportantNames
}

// ExceptionType identifies the category of content signal that argues
// against deleting a message.
type ExceptionType string

const (
	ExceptionOrderNumber    ExceptionType = "order_number"
	ExceptionTrackingNumber ExceptionType = "tracking_number"
	ExceptionShipping       ExceptionType = "shipping"
	ExceptionFinancialAmt   ExceptionType = "financial_amount"
	ExceptionAccountNumber  ExceptionType = "account_number"
	ExceptionBillDue        ExceptionType = "bill_due"
	ExceptionFinancial      ExceptionType = "financial"
	ExceptionAppointment    ExceptionType = "appointment"
	ExceptionReservation    ExceptionType = "reservation"
	ExceptionFlight         ExceptionType = "flight"
	ExceptionTravel         ExceptionType = "travel"
	ExceptionSecurity       ExceptionType = "security"
	ExceptionLegal          ExceptionType = "legal_important"
	ExceptionAttachments    ExceptionType = "has_attachments"
	ExceptionRepliedSender  ExceptionType = "replied_sender"
	ExceptionImportantName  ExceptionType = "important_name"
)

// Exception is a detected content signal suggesting a message matters
// despite a high safety score.
type Exception struct {
	Type     ExceptionType
	Detail   string
	Severity int // 0-100
}

// ExceptionReport is the pooled, deduplicated output of all detectors.
type ExceptionReport struct {
	HasExceptions bool
	Exceptions    []Exception
	Score         int // 0-100 aggregate; higher = more likely important
}

// ScoreResult is the outcome of safety scoring a single message.
type ScoreResult struct {
	Score         int // 0-100, clamped; higher = safer to delete
	HasExceptions bool
	Exceptions    []Exception
}

// ScoreFactor is a single named contribution to a safety score.
type ScoreFactor struct {
	Factor string
	Impact int
}

// ScoreBreakdown explains a score as the ordered list of factors that
// produced it. Its Score always equals the plain scoring result.
type ScoreBreakdown struct {
	Score     int
	Factors   []ScoreFactor
	MessageID string
	Sender    string
	Subject   string
}

// SafetyTier is one of four contiguous score bands used for bulk decisions.
type SafetyTier struct {
	Name  string
	Label string
	Color string
	Min   int
	Max   int
}

// DeletionCandidate is a scored message eligible for deletion.
type DeletionCandidate struct {
	MessageID      string
	ThreadID       string
	Sender         string
	Subject        string
	Date           time.Time
	Score          int
	Tier           SafetyTier
	IsUnread       bool
	HasAttachments bool
	Labels         []string
	HasExceptions  bool
	Exceptions     []Exception
	Breakdown      *ScoreBreakdown // populated on request only
}

// DeletionSummary aggregates tier membership over a message collection.
type DeletionSummary struct {
	TotalMessages   int
	UnlabeledCount  int
	TierCounts      map[string]int
	Deletable       int
	NeedsReview     int
	Keep            int
	ExceptionsCount int
}

// SenderRecommendation suggests a sender whose mail can be bulk deleted.
type SenderRecommendation struct {
	Sender   string
	Count    int
	AvgScore float64
	MinScore int
	MaxScore int
}

// ThresholdImpact is the candidate population at one score threshold.
type ThresholdImpact struct {
	Count      int
	Percentage float64
}

// CleanupImpact reports candidate counts at a fixed ladder of thresholds.
type CleanupImpact struct {
	TotalMessages        int
	UnlabeledCount       int
	ByThreshold          map[int]ThresholdImpact
	RecommendedThreshold int
}

// DeleteError records a per-message failure during deletion.
type DeleteError struct {
	MessageID string
	Err       string
}

// DeleteResult summarizes a deletion run.
type DeleteResult struct {
	Success     bool
	Deleted     int
	Failed      int
	DryRun      bool
	Permanent   bool
	Errors      []DeleteError // capped; TotalErrors reports the true count
	TotalErrors int
}

// Label describes a Gmail label and its message counts.
type Label struct {
	ID             string
	Name           string
	Type           string // "system" or "user"
	MessagesTotal  int64
	MessagesUnread int64
}
