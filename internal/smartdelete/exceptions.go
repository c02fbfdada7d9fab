// Package smartdelete decides which unlabeled messages are safe to delete.
//
// It combines an additive safety scorer with an exception detector that
// scans message content for signals (orders, tracking numbers, bills,
// appointments, travel, security alerts) arguing against deletion.
package smartdelete

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/casey/mailsweep/internal/core"
)

// Severity assigned to each exception branch. Tuned against real inboxes;
// security alerts are always treated as high importance.
const (
	severityOrderNumber    = 40
	severityTracking       = 45
	severityShippingWord   = 25
	severityLargeAmount    = 50
	severityAccountNumber  = 40
	severityBillDueDated   = 55
	severityBillDue        = 45
	severityFinancialWord  = 20
	severityApptTime       = 50
	severityApptCode       = 45
	severityApptWord       = 35
	severityFlight         = 55
	severityTravelWord     = 40
	severitySecurity       = 60
	severityLegal          = 45
	severityLegalDeadline  = 60
	severityAttachment     = 30
	severityRepliedSender  = 35
	severityImportantName  = 40
	minTrackingDigits      = 12
	multiExceptionBonusCap = 10
)

var orderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)order\s*#?\s*:?\s*(\d{5,})`),
	regexp.MustCompile(`(?i)confirmation\s*#?\s*:?\s*(\w{6,})`),
	regexp.MustCompile(`#(\d{6,})`),
}

// Carrier tracking-number shapes. Bare digit-run forms additionally
// require a shipping keyword nearby, checked separately since RE2 has no
// lookahead.
var trackingPatterns = []struct {
	re      *regexp.Regexp
	carrier string
	generic bool
}{
	{regexp.MustCompile(`\b(1Z[A-Z0-9]{16})\b`), "ups", false},
	{regexp.MustCompile(`\b(94\d{20,22})\b`), "usps", false},
	{regexp.MustCompile(`\b(92\d{20,22})\b`), "usps", false},
	{regexp.MustCompile(`\b(\d{12,22})\b`), "generic", true},
	{regexp.MustCompile(`\b(\d{15})\b`), "fedex", true},
	{regexp.MustCompile(`\b(\d{20})\b`), "fedex", true},
}

var genericTrackingContext = []string{"track", "ship", "deliver"}

var shippingKeywords = []string{
	"shipped", "delivered", "tracking", "out for delivery",
	"in transit", "package", "shipment", "carrier",
}

var (
	amountPattern  = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	dueDatePattern = regexp.MustCompile(`(?i)due\s*(?:date|by)?[:\s]*(\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)`)
)

var accountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)account\s*#?\s*:?\s*(\*{2,}\d{2,4})`),
	regexp.MustCompile(`(?i)account\s+ending\s+in\s+(\d{4})`),
	regexp.MustCompile(`\*{3,}(\d{4})`),
}

var financialKeywords = []string{
	"payment", "statement", "balance", "transaction", "invoice",
	"billing", "charged", "credit", "debit", "refund",
	"autopay", "due date", "payment due", "amount due",
}

var appointmentKeywords = []string{
	"appointment", "reservation", "booking", "scheduled for",
	"confirmed for", "reminder", "upcoming visit",
}

var (
	timePattern             = regexp.MustCompile(`\b(\d{1,2}:\d{2}\s*(?:AM|PM|am|pm))\b`)
	confirmationCodePattern = regexp.MustCompile(`\b([A-Z0-9]{6})\b`)
)

// All-caps words that regularly show up in marketing footers and would
// otherwise pass for confirmation codes.
var confirmationCodeStopwords = map[string]struct{}{
	"UNSUBSCRIBE": {}, "UPDATE": {}, "MANAGE": {},
}

var travelKeywords = []string{
	"flight", "itinerary", "boarding pass", "hotel",
	"check-in", "check-out", "airline", "airport",
	"departure", "arrival", "gate", "terminal",
}

var (
	airportCodePattern  = regexp.MustCompile(`\b([A-Z]{3})\b`)
	flightNumberPattern = regexp.MustCompile(`\b([A-Z]{2}\d{1,4})\b`)
)

// Common all-caps words that would otherwise look like airport codes.
var airportCodeStopwords = map[string]struct{}{
	"THE": {}, "AND": {}, "FOR": {}, "YOU": {}, "YOUR": {},
	"ARE": {}, "WAS": {}, "HAS": {}, "HIS": {}, "HER": {},
}

var securityKeywords = []string{
	"password reset", "verify your", "security alert",
	"unusual activity", "sign-in attempt", "login attempt",
	"two-factor", "2fa", "verification code", "security code",
	"suspicious", "unauthorized", "confirm your identity",
}

var legalKeywords = []string{
	"terms of service", "privacy policy", "agreement",
	"contract", "policy update", "action required",
	"respond by", "deadline", "legal notice",
	"important notice", "account suspension", "final notice",
}

var legalDeadlineKeywords = map[string]struct{}{
	"action required": {}, "respond by": {}, "deadline": {}, "final notice": {},
}

// DetectExceptions scans a message's subject and snippet for content that
// suggests it shouldn't be deleted. Detectors run independently; results are
// deduplicated by type, keeping the highest severity per type.
func DetectExceptions(msg core.Message, userCtx *core.UserContext) core.ExceptionReport {
	text := strings.TrimSpace(msg.Subject + " " + msg.Snippet)
	if text == "" {
		return core.ExceptionReport{Exceptions: []core.Exception{}}
	}
	lower := strings.ToLower(text)

	var all []core.Exception
	all = append(all, detectOrderShipping(text, lower)...)
	all = append(all, detectFinancial(text, lower)...)
	all = append(all, detectAppointments(text, lower)...)
	all = append(all, detectTravel(text, lower)...)
	all = append(all, detectSecurity(lower)...)
	all = append(all, detectLegalImportant(lower)...)
	all = append(all, detectPersonalIndicators(msg, lower, userCtx)...)

	unique := dedupeByType(all)
	return core.ExceptionReport{
		HasExceptions: len(unique) > 0,
		Exceptions:    unique,
		Score:         aggregateScore(unique),
	}
}

// dedupeByType keeps the highest-severity exception per type, preserving
// first-seen order.
func dedupeByType(exceptions []core.Exception) []core.Exception {
	best := map[core.ExceptionType]int{} // type -> index into out
	out := make([]core.Exception, 0, len(exceptions))
	for _, exc := range exceptions {
		if i, seen := best[exc.Type]; seen {
			if exc.Severity > out[i].Severity {
				out[i] = exc
			}
			continue
		}
		best[exc.Type] = len(out)
		out = append(out, exc)
	}
	return out
}

// aggregateScore is max severity plus a small bonus for multiple distinct
// exception types, capped at 100.
func aggregateScore(exceptions []core.Exception) int {
	if len(exceptions) == 0 {
		return 0
	}
	maxSeverity := 0
	for _, exc := range exceptions {
		if exc.Severity > maxSeverity {
			maxSeverity = exc.Severity
		}
	}
	bonus := (len(exceptions) - 1) * 5
	if bonus > multiExceptionBonusCap {
		bonus = multiExceptionBonusCap
	}
	score := maxSeverity + bonus
	if score > 100 {
		score = 100
	}
	return score
}

func detectOrderShipping(text, lower string) []core.Exception {
	var out []core.Exception

	for _, re := range orderPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			out = append(out, core.Exception{
				Type:     core.ExceptionOrderNumber,
				Detail:   "Order #" + m[1],
				Severity: severityOrderNumber,
			})
			break
		}
	}

	for _, tp := range trackingPatterns {
		m := tp.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if tp.generic && !containsAny(lower, genericTrackingContext) {
			continue
		}
		tracking := m[1]
		if len(tracking) < minTrackingDigits {
			continue
		}
		if len(tracking) > 15 {
			tracking = tracking[:15] + "..."
		}
		out = append(out, core.Exception{
			Type:     core.ExceptionTrackingNumber,
			Detail:   strings.ToUpper(tp.carrier) + ": " + tracking,
			Severity: severityTracking,
		})
		break
	}

	if len(out) == 0 {
		if kw := firstKeyword(lower, shippingKeywords); kw != "" {
			out = append(out, core.Exception{
				Type:     core.ExceptionShipping,
				Detail:   "Contains '" + kw + "'",
				Severity: severityShippingWord,
			})
		}
	}
	return out
}

func detectFinancial(text, lower string) []core.Exception {
	var out []core.Exception

	if max, ok := maxDollarAmount(text, 100); ok {
		out = append(out, core.Exception{
			Type:     core.ExceptionFinancialAmt,
			Detail:   fmt.Sprintf("Contains $%.2f", max),
			Severity: severityLargeAmount,
		})
	}

	for _, re := range accountPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			out = append(out, core.Exception{
				Type:     core.ExceptionAccountNumber,
				Detail:   "Account " + m[1],
				Severity: severityAccountNumber,
			})
			break
		}
	}

	if strings.Contains(lower, "due date") || strings.Contains(lower, "payment due") {
		if m := dueDatePattern.FindStringSubmatch(text); m != nil {
			out = append(out, core.Exception{
				Type:     core.ExceptionBillDue,
				Detail:   "Due date: " + m[1],
				Severity: severityBillDueDated,
			})
		} else {
			out = append(out, core.Exception{
				Type:     core.ExceptionBillDue,
				Detail:   "Contains due date reference",
				Severity: severityBillDue,
			})
		}
	}

	if len(out) == 0 {
		if kw := firstKeyword(lower, financialKeywords); kw != "" {
			out = append(out, core.Exception{
				Type:     core.ExceptionFinancial,
				Detail:   "Contains '" + kw + "'",
				Severity: severityFinancialWord,
			})
		}
	}
	return out
}

// detectAppointments requires an appointment keyword, then tries sub-rules
// in precedence order: clock time, then confirmation code, then the bare
// keyword match.
func detectAppointments(text, lower string) []core.Exception {
	kw := firstKeyword(lower, appointmentKeywords)
	if kw == "" {
		return nil
	}

	if m := timePattern.FindStringSubmatch(text); m != nil {
		return []core.Exception{{
			Type:     core.ExceptionAppointment,
			Detail:   "Scheduled at " + m[1],
			Severity: severityApptTime,
		}}
	}

	for _, m := range confirmationCodePattern.FindAllStringSubmatch(text, -1) {
		if _, stop := confirmationCodeStopwords[m[1]]; stop {
			continue
		}
		return []core.Exception{{
			Type:     core.ExceptionReservation,
			Detail:   "Confirmation: " + m[1],
			Severity: severityApptCode,
		}}
	}

	return []core.Exception{{
		Type:     core.ExceptionAppointment,
		Detail:   "Contains '" + kw + "'",
		Severity: severityApptWord,
	}}
}

// detectTravel requires a travel keyword, then tries flight number, then a
// two-code route, then the bare keyword match.
func detectTravel(text, lower string) []core.Exception {
	kw := firstKeyword(lower, travelKeywords)
	if kw == "" {
		return nil
	}

	if m := flightNumberPattern.FindStringSubmatch(text); m != nil {
		return []core.Exception{{
			Type:     core.ExceptionFlight,
			Detail:   "Flight " + m[1],
			Severity: severityFlight,
		}}
	}

	if from, to, ok := findRoute(text); ok {
		return []core.Exception{{
			Type:     core.ExceptionFlight,
			Detail:   "Route: " + from + " -> " + to,
			Severity: severityFlight,
		}}
	}

	return []core.Exception{{
		Type:     core.ExceptionTravel,
		Detail:   "Contains '" + kw + "'",
		Severity: severityTravelWord,
	}}
}

// findRoute looks for two distinct airport-like codes. Deliberately loose:
// any three capital letters outside the stopword list qualify.
func findRoute(text string) (string, string, bool) {
	var first string
	for _, m := range airportCodePattern.FindAllStringSubmatch(text, -1) {
		code := m[1]
		if _, stop := airportCodeStopwords[code]; stop {
			continue
		}
		if first == "" {
			first = code
			continue
		}
		if code != first {
			return first, code, true
		}
	}
	return "", "", false
}

func detectSecurity(lower string) []core.Exception {
	kw := firstKeyword(lower, securityKeywords)
	if kw == "" {
		return nil
	}
	return []core.Exception{{
		Type:     core.ExceptionSecurity,
		Detail:   "Contains '" + kw + "'",
		Severity: severitySecurity,
	}}
}

func detectLegalImportant(lower string) []core.Exception {
	kw := firstKeyword(lower, legalKeywords)
	if kw == "" {
		return nil
	}
	severity := severityLegal
	if _, deadline := legalDeadlineKeywords[kw]; deadline {
		severity = severityLegalDeadline
	}
	return []core.Exception{{
		Type:     core.ExceptionLegal,
		Detail:   "Contains '" + kw + "'",
		Severity: severity,
	}}
}

func detectPersonalIndicators(msg core.Message, lower string, userCtx *core.UserContext) []core.Exception {
	var out []core.Exception

	if msg.HasAttachments {
		out = append(out, core.Exception{
			Type:     core.ExceptionAttachments,
			Detail:   "Contains attachments",
			Severity: severityAttachment,
		})
	}

	if userCtx.RepliedToSender(msg.Sender) {
		out = append(out, core.Exception{
			Type:     core.ExceptionRepliedSender,
			Detail:   "Previously replied to this sender",
			Severity: severityRepliedSender,
		})
	}

	for _, name := range userCtx.Names() {
		if strings.Contains(lower, strings.ToLower(name)) {
			out = append(out, core.Exception{
				Type:     core.ExceptionImportantName,
				Detail:   "Mentions '" + name + "'",
				Severity: severityImportantName,
			})
			break
		}
	}
	return out
}

// maxDollarAmount returns the largest dollar amount at or above floor.
func maxDollarAmount(text string, floor float64) (float64, bool) {
	var max float64
	found := false
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount < floor {
			continue
		}
		if !found || amount > max {
			max = amount
			found = true
		}
	}
	return max, found
}

func firstKeyword(lower string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
