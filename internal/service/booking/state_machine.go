// Package booking implements the booking lifecycle.
package booking

import (
	"fmt"
	"strings"

	"github.com/havenstays/booking-backend/internal/common/errors"
	"github.com/havenstays/booking-backend/internal/models"
)

// transitions is the forward transition table. Statuses absent from the
// map (failure statuses written by back-office tooling, the legacy
// CONFIRMED alias) accept no forward transitions.
var transitions = map[string][]string{
	models.StatusPaymentPending:     {models.StatusPaymentSuccess},
	models.StatusPaymentSuccess:     {models.StatusRequestSentToOwner},
	models.StatusRequestSentToOwner: {models.StatusOwnerConfirmed, models.StatusOwnerCancelled},
	models.StatusOwnerConfirmed:     {models.StatusTicketGenerated},
	models.StatusOwnerCancelled:     {models.StatusRefundRequired},
	models.StatusTicketGenerated:    {},
	models.StatusRefundRequired:     {},
}

// AllowedTransitions returns the statuses reachable from current.
func AllowedTransitions(current string) []string {
	return transitions[current]
}

// CanTransition reports whether current may move to next.
func CanTransition(current, next string) bool {
	for _, allowed := range transitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition checks a requested status change against the
// transition table. A request for the current status is an idempotent
// no-op and returns (true, nil); retried payment webhooks rely on this.
// The returned bool reports whether the caller should persist anything.
func ValidateTransition(current, requested string) (bool, error) {
	if requested == current {
		return false, nil
	}
	if !CanTransition(current, requested) {
		allowed := transitions[current]
		var detail string
		if len(allowed) == 0 {
			detail = fmt.Sprintf("status %s is terminal", current)
		} else {
			detail = fmt.Sprintf("allowed from %s: %s", current, strings.Join(allowed, ", "))
		}
		return false, errors.ErrInvalidTransition.WithMessage(
			fmt.Sprintf("cannot move booking from %s to %s (%s)", current, requested, detail))
	}
	return true, nil
}
