package smartdelete

import (
	"time"

	"go.uber.org/zap"

	"github.com/casey/mailsweep/internal/core"
	"github.com/casey/mailsweep/internal/taxonomy"
)

// ClassifyFunc assigns a sender-type category to a message. The taxonomy
// classifier satisfies it; tests substitute fixtures.
type ClassifyFunc func(msg core.Message, userDomain string) string

// Scorer computes 0-100 deletion-safety scores. Higher means safer to
// delete. Scoring is a pure function of the message and user context;
// the same inputs always produce the same score.
type Scorer struct {
	rules  []scoreRule
	logger *zap.Logger
	now    func() time.Time
}

// ScorerOption customizes a Scorer.
type ScorerOption func(*Scorer)

// WithClock overrides the time source used for message-age rules.
func WithClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) { s.now = now }
}

// WithClassifier overrides the sender-type classifier.
func WithClassifier(classify ClassifyFunc) ScorerOption {
	return func(s *Scorer) { s.rules = scoringRules(classify) }
}

// NewScorer creates a scorer backed by the taxonomy classifier.
func NewScorer(logger *zap.Logger, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		rules:  scoringRules(taxonomy.ClassifyMessage),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CalculateSafetyScore scores a message and attaches its exception report.
func (s *Scorer) CalculateSafetyScore(msg core.Message, userCtx *core.UserContext) core.ScoreResult {
	score := s.rawScore(msg, userCtx)
	report := DetectExceptions(msg, userCtx)

	if s.logger != nil {
		s.logger.Debug("Scored message",
			zap.String("message_id", msg.MessageID),
			zap.String("sender", msg.Sender),
			zap.Int("score", score),
			zap.Bool("has_exceptions", report.HasExceptions))
	}

	return core.ScoreResult{
		Score:         score,
		HasExceptions: report.HasExceptions,
		Exceptions:    report.Exceptions,
	}
}

// rawScore folds the rule list: base 50 plus every rule that fires,
// clamped to [0,100] at the end so small signals can combine naturally.
func (s *Scorer) rawScore(msg core.Message, userCtx *core.UserContext) int {
	env := newRuleEnv(msg, userCtx, s.now())
	score := baseScore
	for _, rule := range s.rules {
		if rule.applies(env) {
			score += rule.points
		}
	}
	return clampScore(score)
}

// ScoreBreakdown explains a score factor by factor. It folds the same rule
// list as CalculateSafetyScore, so the totals always agree.
func (s *Scorer) ScoreBreakdown(msg core.Message, userCtx *core.UserContext) core.ScoreBreakdown {
	env := newRuleEnv(msg, userCtx, s.now())

	factors := []core.ScoreFactor{{Factor: "Base score", Impact: baseScore}}
	total := baseScore
	for _, rule := range s.rules {
		if rule.applies(env) {
			factors = append(factors, core.ScoreFactor{Factor: rule.name, Impact: rule.points})
			total += rule.points
		}
	}

	return core.ScoreBreakdown{
		Score:     clampScore(total),
		Factors:   factors,
		MessageID: msg.MessageID,
		Sender:    msg.Sender,
		Subject:   msg.Subject,
	}
}
