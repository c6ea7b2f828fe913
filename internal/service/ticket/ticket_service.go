// Package ticket implements the e-ticket access gate.
package ticket

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/havenstays/booking-backend/internal/common/cache"
	"github.com/havenstays/booking-backend/internal/common/errors"
	"github.com/havenstays/booking-backend/internal/common/logger"
	"github.com/havenstays/booking-backend/internal/common/metrics"
	"github.com/havenstays/booking-backend/internal/common/qrcode"
	"github.com/havenstays/booking-backend/internal/models"
	"github.com/havenstays/booking-backend/internal/repository"
)

// Service resolves bookings into guest-facing ticket views.
type Service struct {
	bookingRepo *repository.BookingRepository
	store       *cache.Store
	qr          *qrcode.Generator
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewService creates the ticket service. store, qr and m may be nil in
// tests.
func NewService(
	bookingRepo *repository.BookingRepository,
	store *cache.Store,
	qr *qrcode.Generator,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		store:       store,
		qr:          qr,
		cacheTTL:    cacheTTL,
		metrics:     m,
		now:         time.Now,
	}
}

// Lookup identifies a booking by exactly one of its keys.
type Lookup struct {
	BookingID string
	Token     string
}

// View is the ticket payload. Kind distinguishes the reduced pending
// view from the full ticket; pending views omit owner and location
// details.
type View struct {
	Kind          string  `json:"kind"`
	BookingID     string  `json:"booking_id"`
	BookingStatus string  `json:"booking_status"`
	GuestName     string  `json:"guest_name"`
	PropertyName  string  `json:"property_name"`
	PropertyType  string  `json:"property_type"`
	CheckinAt     string  `json:"checkin_at"`
	CheckoutAt    string  `json:"checkout_at"`
	TotalAmount   float64 `json:"total_amount"`
	AdvanceAmount float64 `json:"advance_amount"`
	DueAmount     float64 `json:"due_amount"`

	// Full view only.
	GuestEmail    *string `json:"guest_email,omitempty"`
	GuestPhone    *string `json:"guest_phone,omitempty"`
	OwnerName     *string `json:"owner_name,omitempty"`
	OwnerEmail    *string `json:"owner_email,omitempty"`
	OwnerPhone    *string `json:"owner_phone,omitempty"`
	PropertyPlace *string `json:"property_place,omitempty"`
	MapLink       *string `json:"map_link,omitempty"`
	OrderID       *string `json:"order_id,omitempty"`
	TransactionID *string `json:"transaction_id,omitempty"`
	QRCode        string  `json:"qr_code,omitempty"`
}

// View kinds.
const (
	ViewKindFull    = "full"
	ViewKindPending = "pending"
)

// Statuses that yield the reduced pending view.
var pendingStatuses = map[string]bool{
	models.StatusPendingOwnerConfirmation: true,
	models.StatusRequestSentToOwner:       true,
	models.StatusPaymentSuccess:           true,
}

// Statuses that block ticket access outright.
var blockedStatuses = map[string]bool{
	models.StatusPaymentFailed:     true,
	models.StatusPaymentPending:    true,
	models.StatusCancelledByOwner:  true,
	models.StatusCancelledNoRefund: true,
}

// Get resolves a booking and applies the visibility policy. Rules are
// evaluated in strict precedence: expiry (waived for admins), pending,
// blocked, not-yet-ticketed, full view.
func (s *Service) Get(ctx context.Context, lookup Lookup, isAdmin bool) (*View, error) {
	booking, err := s.resolve(ctx, lookup)
	if err != nil {
		return nil, err
	}

	if s.now().After(booking.CheckoutDatetime) && !isAdmin {
		s.record("expired")
		return nil, errors.ErrTicketExpired
	}

	if pendingStatuses[booking.BookingStatus] {
		s.record("pending")
		return pendingView(booking), nil
	}

	if blockedStatuses[booking.BookingStatus] {
		s.record("blocked")
		if booking.BookingStatus == models.StatusCancelledByOwner {
			return nil, errors.ErrTicketOwnerCancelled
		}
		return nil, errors.ErrTicketUnavailable
	}

	if !booking.IsTicketEligible() && booking.BookingStatus != models.StatusOwnerConfirmed {
		s.record("not_ready")
		return nil, errors.ErrTicketNotReady
	}

	view, err := s.fullView(ctx, booking)
	if err != nil {
		return nil, err
	}
	s.record("full")
	return view, nil
}

// resolve fetches the booking by whichever lookup key is set.
func (s *Service) resolve(ctx context.Context, lookup Lookup) (*models.Booking, error) {
	var (
		booking *models.Booking
		err     error
	)
	switch {
	case lookup.BookingID != "":
		booking, err = s.bookingRepo.GetByBookingID(ctx, lookup.BookingID)
	case lookup.Token != "":
		booking, err = s.bookingRepo.GetByTicketToken(ctx, lookup.Token)
	default:
		return nil, errors.ErrInvalidParams.WithMessage("booking_id or token is required")
	}
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return booking, nil
}

// pendingView builds the reduced view: no owner contact, no location.
func pendingView(booking *models.Booking) *View {
	return &View{
		Kind:          ViewKindPending,
		BookingID:     booking.BookingID,
		BookingStatus: booking.BookingStatus,
		GuestName:     booking.GuestName,
		PropertyName:  booking.PropertyName,
		PropertyType:  booking.PropertyType,
		CheckinAt:     booking.CheckinDatetime.Format(time.RFC3339),
		CheckoutAt:    booking.CheckoutDatetime.Format(time.RFC3339),
		TotalAmount:   booking.TotalAmount,
		AdvanceAmount: booking.AdvanceAmount,
		DueAmount:     booking.DueAmount(),
	}
}

// fullView builds the complete ticket, serving from cache when the
// same booking was viewed recently.
func (s *Service) fullView(ctx context.Context, booking *models.Booking) (*View, error) {
	cacheKey := cache.BuildKey(cache.KeyPrefixTicket, booking.BookingID)

	if s.store != nil {
		var cached View
		if err := s.store.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !cache.IsMiss(err) {
			logger.Warn("ticket cache read failed",
				logger.BookingID(booking.BookingID),
				logger.Err(err),
			)
		}
	}

	view := &View{
		Kind:          ViewKindFull,
		BookingID:     booking.BookingID,
		BookingStatus: booking.BookingStatus,
		GuestName:     booking.GuestName,
		GuestEmail:    booking.GuestEmail,
		GuestPhone:    booking.GuestPhone,
		PropertyName:  booking.PropertyName,
		PropertyType:  booking.PropertyType,
		PropertyPlace: booking.PropertyPlace,
		MapLink:       booking.MapLink,
		OwnerName:     booking.OwnerName,
		OwnerEmail:    booking.OwnerEmail,
		OwnerPhone:    booking.OwnerPhone,
		CheckinAt:     booking.CheckinDatetime.Format(time.RFC3339),
		CheckoutAt:    booking.CheckoutDatetime.Format(time.RFC3339),
		TotalAmount:   booking.TotalAmount,
		AdvanceAmount: booking.AdvanceAmount,
		DueAmount:     booking.DueAmount(),
		OrderID:       booking.OrderID,
		TransactionID: booking.TransactionID,
	}

	if s.qr != nil {
		content := booking.BookingID
		if booking.TicketToken != nil {
			content = *booking.TicketToken
		}
		dataURL, err := s.qr.GenerateDataURL(content)
		if err != nil {
			logger.Warn("qr generation failed",
				logger.BookingID(booking.BookingID),
				logger.Err(err),
			)
		} else {
			view.QRCode = dataURL
		}
	}

	if s.store != nil {
		if err := s.store.Set(ctx, cacheKey, view, s.cacheTTL); err != nil {
			logger.Warn("ticket cache write failed",
				logger.BookingID(booking.BookingID),
				logger.Err(err),
			)
		}
	}

	return view, nil
}

func (s *Service) record(result string) {
	if s.metrics != nil {
		s.metrics.TicketView(result)
	}
}
