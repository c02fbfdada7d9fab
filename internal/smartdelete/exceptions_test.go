package smartdelete

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/casey/mailsweep/internal/core"
)

func exceptionTypes(report core.ExceptionReport) []core.ExceptionType {
	out := make([]core.ExceptionType, 0, len(report.Exceptions))
	for _, exc := range report.Exceptions {
		out = append(out, exc.Type)
	}
	return out
}

func TestDetectOrderNumber(t *testing.T) {
	msg := core.Message{Subject: "Your order #123456 has shipped"}
	report := DetectExceptions(msg, nil)

	be.True(t, report.HasExceptions)
	be.Equal(t, len(report.Exceptions), 1)
	be.Equal(t, report.Exceptions[0].Type, core.ExceptionOrderNumber)
	be.Equal(t, report.Exceptions[0].Detail, "Order #123456")
	be.Equal(t, report.Score, 40)
}

func TestDetectUPSTracking(t *testing.T) {
	msg := core.Message{Snippet: "Tracking number 1Z999AA10123456784 for your package"}
	report := DetectExceptions(msg, nil)

	be.True(t, report.HasExceptions)
	be.Equal(t, report.Exceptions[0].Type, core.ExceptionTrackingNumber)
	be.True(t, strings.HasPrefix(report.Exceptions[0].Detail, "UPS:"))
	be.Equal(t, report.Exceptions[0].Severity, 45)
}

func TestGenericTrackingNeedsShippingContext(t *testing.T) {
	// A long digit run without any shipping words is not a tracking number.
	noContext := core.Message{Subject: "Reference 123456789012345"}
	report := DetectExceptions(noContext, nil)
	for _, exc := range report.Exceptions {
		be.True(t, exc.Type != core.ExceptionTrackingNumber)
	}

	withContext := core.Message{Subject: "Shipment 123456789012345 is out for delivery"}
	report = DetectExceptions(withContext, nil)
	be.Equal(t, report.Exceptions[0].Type, core.ExceptionTrackingNumber)
}

func TestDetectLargeAmount(t *testing.T) {
	msg := core.Message{Subject: "Your payment of $1,234.56 was processed"}
	report := DetectExceptions(msg, nil)

	be.Equal(t, len(report.Exceptions), 1)
	be.Equal(t, report.Exceptions[0].Type, core.ExceptionFinancialAmt)
	be.Equal(t, report.Exceptions[0].Detail, "Contains $1234.56")
	be.Equal(t, report.Score, 50)
}

func TestSmallAmountFallsBackToKeyword(t *testing.T) {
	msg := core.Message{Subject: "$5.00 payment received"}
	report := DetectExceptions(msg, nil)

	be.Equal(t, len(report.Exceptions), 1)
	be.Equal(t, report.Exceptions[0].Type, core.ExceptionFinancial)
	be.Equal(t, report.Exceptions[0].Severity, 20)
}

func TestDetectBillDueWithDate(t *testing.T) {
	msg := core.Message{Subject: "Payment due date: 06/15/2025"}
	report := DetectExceptions(msg, nil)

	be.Equal(t, len(report.Exceptions), 1)
	be.Equal(t, report.Exceptions[0].Type, core.ExceptionBillDue)
	be.Equal(t, report.Exceptions[0].Detail, "Due date: 06/15/2025")
	be.Equal(t, report.Exceptions[0].Severity, 55)
}

func TestDetectAppointmentTime(t *testing.T) {
	msg := core.Message{Subject: "Appointment reminder", Snippet: "You are scheduled for 2:30 PM on Tuesday"}
	report := DetectExceptions(msg, nil)

	be.Equal(t, report.Exceptions[0].Type, core.ExceptionAppointment)
	be.Equal(t, report.Exceptions[0].Detail, "Scheduled at 2:30 PM")
	be.Equal(t, report.Exceptions[0].Severity, 50)
}

func TestDetectReservationCode(t *testing.T) {
	msg := core.Message{Subject: "Your reservation is booked", Snippet: "Code ABC123 at the front desk"}
	report := DetectExceptions(msg, nil)

	be.Equal(t, report.Exceptions[0].Type, core.ExceptionReservation)
	be.Equal(t, report.Exceptions[0].Detail, "Confirmation: ABC123")
}

func TestDetectFlightNumber(t *testing.T) {
	msg := core.Message{Subject: "Your flight AA1234 departs from SFO"}
	report := DetectExceptions(msg, nil)

	be.Equal(t, report.Exceptions[0].Type, core.ExceptionFlight)
	be.Equal(t, report.Exceptions[0].Detail, "Flight AA1234")
	be.Equal(t, report.Exceptions[0].Severity, 55)
}

func TestDetectRoute(t *testing.T) {
	msg := core.Message{Subject: "Your trip itinerary", Snippet: "SFO to JFK, seat 12A"}
	report := DetectExceptions(msg, nil)

	be.Equal(t, report.Exceptions[0].Type, core.ExceptionFlight)
	be.True(t, strings.Contains(report.Exceptions[0].Detail, "SFO"))
	be.True(t, strings.Contains(report.Exceptions[0].Detail, "JFK"))
}

func TestDetectSecurity(t *testing.T) {
	msg := core.Message{Subject: "Unusual activity detected on your account"}
	report := DetectExceptions(msg, nil)

	types := exceptionTypes(report)
	found := false
	for _, typ := range types {
		if typ == core.ExceptionSecurity {
			found = true
		}
	}
	be.True(t, found)
}

func TestDetectLegalDeadline(t *testing.T) {
	msg := core.Message{Subject: "Action required: respond by Friday"}
	report := DetectExceptions(msg, nil)

	be.Equal(t, report.Exceptions[0].Type, core.ExceptionLegal)
	be.Equal(t, report.Exceptions[0].Severity, 60)
}

func TestDetectPersonalIndicators(t *testing.T) {
	msg := core.Message{
		Sender:         "friend@example.com",
		Subject:        "Photos from the trip with Mom",
		HasAttachments: true,
	}
	userCtx := &core.UserContext{
		RepliedSenders: map[string]struct{}{"friend@example.com": {}},
		ImportantNames: []string{"Mom"},
	}
	report := DetectExceptions(msg, userCtx)

	types := exceptionTypes(report)
	be.True(t, len(types) >= 3)
	has := map[core.ExceptionType]bool{}
	for _, typ := range types {
		has[typ] = true
	}
	be.True(t, has[core.ExceptionAttachments])
	be.True(t, has[core.ExceptionRepliedSender])
	be.True(t, has[core.ExceptionImportantName])
}

func TestAggregateScoreMultipleTypes(t *testing.T) {
	msg := core.Message{
		Subject:        "Security alert: verify your payment account",
		HasAttachments: true,
	}
	report := DetectExceptions(msg, nil)

	// security 60 + two extra types at 5 each, capped bonus
	be.Equal(t, len(report.Exceptions), 3)
	be.Equal(t, report.Score, 70)
}

func TestDedupeKeepsMaxSeverity(t *testing.T) {
	deduped := dedupeByType([]core.Exception{
		{Type: core.ExceptionShipping, Detail: "low", Severity: 20},
		{Type: core.ExceptionFinancial, Detail: "mid", Severity: 30},
		{Type: core.ExceptionShipping, Detail: "high", Severity: 45},
	})

	be.Equal(t, len(deduped), 2)
	be.Equal(t, deduped[0].Type, core.ExceptionShipping)
	be.Equal(t, deduped[0].Severity, 45)
	be.Equal(t, deduped[1].Type, core.ExceptionFinancial)
}

func TestEmptyMessageHasNoExceptions(t *testing.T) {
	report := DetectExceptions(core.Message{}, nil)

	be.True(t, !report.HasExceptions)
	be.Equal(t, len(report.Exceptions), 0)
	be.Equal(t, report.Score, 0)
}
