// Package models defines the database models.
package models

import (
	"time"
)

// Booking is the central booking record. A single row tracks the full
// lifecycle from payment through owner confirmation to ticket issuance
// and commission settlement.
type Booking struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID string `gorm:"type:varchar(64);uniqueIndex;not null" json:"booking_id"`

	// Guest details.
	GuestName  string  `gorm:"type:varchar(120);not null" json:"guest_name"`
	GuestEmail *string `gorm:"type:varchar(255)" json:"guest_email,omitempty"`
	GuestPhone *string `gorm:"type:varchar(30)" json:"guest_phone,omitempty"`

	// Property details.
	PropertyName  string  `gorm:"type:varchar(200);not null" json:"property_name"`
	PropertyType  string  `gorm:"type:varchar(20);index;not null" json:"property_type"`
	PropertyPlace *string `gorm:"type:varchar(200)" json:"property_place,omitempty"`
	MapLink       *string `gorm:"type:varchar(500)" json:"map_link,omitempty"`
	OwnerName     *string `gorm:"type:varchar(120)" json:"owner_name,omitempty"`
	OwnerEmail    *string `gorm:"type:varchar(255)" json:"owner_email,omitempty"`
	OwnerPhone    *string `gorm:"type:varchar(30)" json:"owner_phone,omitempty"`

	// Stay window.
	CheckinDatetime  time.Time `gorm:"index;not null" json:"checkin_datetime"`
	CheckoutDatetime time.Time `gorm:"index;not null" json:"checkout_datetime"`

	// Occupancy. Villas carry persons/max_capacity; camping and cottage
	// bookings carry veg/nonveg guest counts instead. The two groups are
	// mutually exclusive.
	Persons      *int `json:"persons,omitempty"`
	MaxCapacity  *int `json:"max_capacity,omitempty"`
	VegGuests    *int `json:"veg_guests,omitempty"`
	NonvegGuests *int `json:"nonveg_guests,omitempty"`

	// Amounts. TotalAmount may be zero for advance-only bookings; the
	// settlement engine derives the total from the advance in that case.
	TotalAmount   float64 `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	AdvanceAmount float64 `gorm:"type:decimal(12,2);not null;default:0" json:"advance_amount"`

	// Lifecycle.
	BookingStatus string  `gorm:"type:varchar(40);index;not null" json:"booking_status"`
	PaymentStatus *string `gorm:"type:varchar(40)" json:"payment_status,omitempty"`
	OrderID       *string `gorm:"type:varchar(64)" json:"order_id,omitempty"`
	TransactionID *string `gorm:"type:varchar(64)" json:"transaction_id,omitempty"`

	// E-ticket. TicketToken is issued when the booking reaches
	// TICKET_GENERATED and allows tokenized guest access.
	TicketToken *string `gorm:"type:varchar(64);index" json:"ticket_token,omitempty"`

	// Referral attribution, captured at creation time.
	ReferralCode *string `gorm:"type:varchar(40);index" json:"referral_code,omitempty"`
	ReferralType *string `gorm:"type:varchar(20)" json:"referral_type,omitempty"`

	// Commission settlement.
	CommissionPaid     bool     `gorm:"not null;default:false;index" json:"commission_paid"`
	CommissionStatus   *string  `gorm:"type:varchar(40)" json:"commission_status,omitempty"`
	AdminCommission    *float64 `gorm:"type:decimal(12,2)" json:"admin_commission,omitempty"`
	ReferrerCommission *float64 `gorm:"type:decimal(12,2)" json:"referrer_commission,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name.
func (Booking) TableName() string {
	return "bookings"
}

// Property types.
const (
	PropertyTypeVilla   = "villa"
	PropertyTypeCamping = "camping"
	PropertyTypeCottage = "cottage"
)

// Booking lifecycle statuses.
const (
	StatusPaymentPending           = "PAYMENT_PENDING"
	StatusPaymentSuccess           = "PAYMENT_SUCCESS"
	StatusPaymentFailed            = "PAYMENT_FAILED"
	StatusRequestSentToOwner       = "BOOKING_REQUEST_SENT_TO_OWNER"
	StatusPendingOwnerConfirmation = "PENDING_OWNER_CONFIRMATION"
	StatusOwnerConfirmed           = "OWNER_CONFIRMED"
	StatusOwnerCancelled           = "OWNER_CANCELLED"
	StatusTicketGenerated          = "TICKET_GENERATED"
	StatusRefundRequired           = "REFUND_REQUIRED"
	StatusCancelledByOwner         = "CANCELLED_BY_OWNER"
	StatusCancelledNoRefund        = "CANCELLED_NO_REFUND"
	// StatusConfirmed is a legacy status still present on older rows. It
	// remains ticket-eligible.
	StatusConfirmed = "CONFIRMED"
)

// Commission settlement statuses.
const (
	CommissionStatusDistributed           = "DISTRIBUTED"
	CommissionStatusDistributedNoReferrer = "DISTRIBUTED_NO_REFERRER"
)

// Referral types.
const (
	ReferralTypeOwner     = "owner"
	ReferralTypeB2B       = "b2b"
	ReferralTypeOwnersB2B = "owners_b2b"
	ReferralTypePublic    = "public"
)

// IsTerminal reports whether the booking is in a terminal status.
func (b *Booking) IsTerminal() bool {
	return b.BookingStatus == StatusTicketGenerated || b.BookingStatus == StatusRefundRequired
}

// IsTicketEligible reports whether the booking status allows ticket
// issuance or viewing.
func (b *Booking) IsTicketEligible() bool {
	return b.BookingStatus == StatusTicketGenerated || b.BookingStatus == StatusConfirmed
}

// IsOwnerCancelled reports whether the owner cancelled the booking.
func (b *Booking) IsOwnerCancelled() bool {
	return b.BookingStatus == StatusOwnerCancelled ||
		b.BookingStatus == StatusCancelledByOwner ||
		b.BookingStatus == StatusRefundRequired
}

// DueAmount returns the balance payable at the property.
func (b *Booking) DueAmount() float64 {
	due := b.TotalAmount - b.AdvanceAmount
	if due < 0 {
		return 0
	}
	return due
}
