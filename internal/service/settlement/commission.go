// Package settlement implements commission calculation and the
// distribution cycle that pays out checked-out, ticketed bookings.
package settlement

import (
	"strings"

	"github.com/havenstays/booking-backend/internal/common/utils"
	"github.com/havenstays/booking-backend/internal/models"
)

// Rate is a commission split for one referral type. Referrer and Admin
// are fractions of the booking total.
type Rate struct {
	Referrer float64
	Admin    float64
}

// RateTable maps referral types to their commission splits. Unknown
// types fall back to the public rate.
type RateTable struct {
	rates       map[string]Rate
	defaultRate Rate
}

// DefaultRateTable returns the platform's standard split rates.
func DefaultRateTable() *RateTable {
	return &RateTable{
		rates: map[string]Rate{
			models.ReferralTypeOwner:     {Referrer: 0.25, Admin: 0.05},
			models.ReferralTypeB2B:       {Referrer: 0.22, Admin: 0.08},
			models.ReferralTypeOwnersB2B: {Referrer: 0.22, Admin: 0.08},
			models.ReferralTypePublic:    {Referrer: 0.15, Admin: 0.15},
		},
		defaultRate: Rate{Referrer: 0.15, Admin: 0.15},
	}
}

// Lookup returns the rate for a referral type, case-insensitively.
func (t *RateTable) Lookup(referralType string) Rate {
	if rate, ok := t.rates[strings.ToLower(strings.TrimSpace(referralType))]; ok {
		return rate
	}
	return t.defaultRate
}

// Split is a computed commission split.
type Split struct {
	ReferrerAmount float64 `json:"referrer_amount"`
	AdminAmount    float64 `json:"admin_amount"`
}

// CalcCommission computes the referrer and admin amounts for a booking
// total. Each side is rounded to 2 decimals independently, so the two
// amounts may not sum exactly to the combined theoretical share. That
// drift is a deliberate, documented property of the payout policy.
func (t *RateTable) CalcCommission(totalAmount float64, referralType string) Split {
	rate := t.Lookup(referralType)
	return Split{
		ReferrerAmount: utils.Round2(totalAmount * rate.Referrer),
		AdminAmount:    utils.Round2(totalAmount * rate.Admin),
	}
}

// DefaultAdvanceShare is the policy share of the total collected as
// advance when no share is configured.
const DefaultAdvanceShare = 0.30

// ResolveTotalAmount determines the settleable total of a booking
// using the default advance share.
func ResolveTotalAmount(booking *models.Booking) float64 {
	return ResolveTotalAmountWith(booking, DefaultAdvanceShare)
}

// ResolveTotalAmountWith determines the settleable total of a booking.
// The stored total wins when positive; otherwise the total is derived
// from the advance assuming it covers advanceShare of the full price.
// Zero means the total cannot be resolved and the booking should be
// skipped.
func ResolveTotalAmountWith(booking *models.Booking, advanceShare float64) float64 {
	if advanceShare <= 0 {
		advanceShare = DefaultAdvanceShare
	}
	if booking.TotalAmount > 0 {
		return booking.TotalAmount
	}
	if booking.AdvanceAmount > 0 {
		return utils.Round2(booking.AdvanceAmount / advanceShare)
	}
	return 0
}
