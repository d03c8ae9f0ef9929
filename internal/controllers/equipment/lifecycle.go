package equipmentController

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCheckoutDays is the standard checkout duration offered to the
	// desk client.
	DefaultCheckoutDays = 60

	// MaxCheckoutDays caps the expected return date at checkout time.
	MaxCheckoutDays = 180

	// RenewalDays is the fixed renewal window added on each lease renewal.
	RenewalDays = 60

	// DueSoonWindowDays bounds the due-soon horizon.
	DueSoonWindowDays = 10

	MaxNotesLength = 1000
)

// DepositRefundRate is the standard refund suggested on return: 75% of the
// collected deposit. The engine only records whether anything was returned;
// the computed amount is advisory.
var DepositRefundRate = decimal.NewFromFloat(0.75)

// computeRenewalDate advances the expected return date by the renewal window.
// A lease renewed before it lapses extends from its current expected return;
// a lapsed lease extends from now, so renewing an overdue item never yields a
// date in the past.
func computeRenewalDate(currentExpectedReturn, now time.Time) time.Time {
	base := currentExpectedReturn
	if now.After(base) {
		base = now
	}
	return base.AddDate(0, 0, RenewalDays)
}

// isOverdue applies the strict-inequality rule: an item due exactly now is
// not overdue.
func isOverdue(expectedReturn, now time.Time) bool {
	return expectedReturn.Before(now)
}

// isDueSoon reports whether an open checkout falls inside the due-soon
// horizon: due now through now+window inclusive, overdue items excluded.
func isDueSoon(expectedReturn, now time.Time) bool {
	if isOverdue(expectedReturn, now) {
		return false
	}
	horizon := now.AddDate(0, 0, DueSoonWindowDays)
	return !expectedReturn.After(horizon)
}

// validateCheckoutWindow checks that the requested expected return date is in
// the future and within the maximum checkout duration.
func validateCheckoutWindow(expectedReturn, now time.Time) error {
	if !expectedReturn.After(now) {
		return fmt.Errorf("expected return date must be in the future")
	}
	if expectedReturn.After(now.AddDate(0, 0, MaxCheckoutDays)) {
		return fmt.Errorf("expected return date exceeds the %d day maximum", MaxCheckoutDays)
	}
	return nil
}

// suggestedRefund computes the advisory refund for a returned deposit.
func suggestedRefund(depositCollected decimal.Decimal) decimal.Decimal {
	return depositCollected.Mul(DepositRefundRate).Round(2)
}

// appendRenewalAudit appends a timestamped audit line to the existing
// checkout notes without overwriting prior content.
func appendRenewalAudit(existingNotes string, newExpectedReturn, now time.Time, renewalNotes string) string {
	line := fmt.Sprintf(
		"[Renewed %s] Expected return extended to %s",
		now.Format(time.RFC3339),
		newExpectedReturn.Format(time.RFC3339),
	)
	if renewalNotes != "" {
		line += ": " + renewalNotes
	}

	if existingNotes == "" {
		return line
	}
	return existingNotes + "\n" + line
}
