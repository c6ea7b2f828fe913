package booking

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/havenstays/booking-backend/internal/common/cache"
	"github.com/havenstays/booking-backend/internal/common/errors"
	"github.com/havenstays/booking-backend/internal/common/logger"
	"github.com/havenstays/booking-backend/internal/common/metrics"
	"github.com/havenstays/booking-backend/internal/common/utils"
	"github.com/havenstays/booking-backend/internal/models"
	"github.com/havenstays/booking-backend/internal/repository"
)

// BookingIDPrefix prefixes generated booking identifiers.
const BookingIDPrefix = "HS"

// Service implements booking creation and lifecycle updates.
type Service struct {
	bookingRepo  *repository.BookingRepository
	referralRepo *repository.ReferralRepository
	store        *cache.Store
	metrics      *metrics.Metrics
}

// NewService creates the booking service. store and m may be nil in
// tests.
func NewService(
	bookingRepo *repository.BookingRepository,
	referralRepo *repository.ReferralRepository,
	store *cache.Store,
	m *metrics.Metrics,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		referralRepo: referralRepo,
		store:        store,
		metrics:      m,
	}
}

// CreateRequest is the booking creation payload.
type CreateRequest struct {
	GuestName  string  `json:"guest_name" binding:"required"`
	GuestEmail *string `json:"guest_email,omitempty"`
	GuestPhone *string `json:"guest_phone,omitempty"`

	PropertyName  string  `json:"property_name" binding:"required"`
	PropertyType  string  `json:"property_type" binding:"required"`
	PropertyPlace *string `json:"property_place,omitempty"`
	MapLink       *string `json:"map_link,omitempty"`
	OwnerName     *string `json:"owner_name,omitempty"`
	OwnerEmail    *string `json:"owner_email,omitempty"`
	OwnerPhone    *string `json:"owner_phone,omitempty"`

	CheckinDatetime  time.Time `json:"checkin_datetime" binding:"required"`
	CheckoutDatetime time.Time `json:"checkout_datetime" binding:"required"`

	Persons      *int `json:"persons,omitempty"`
	MaxCapacity  *int `json:"max_capacity,omitempty"`
	VegGuests    *int `json:"veg_guests,omitempty"`
	NonvegGuests *int `json:"nonveg_guests,omitempty"`

	TotalAmount   float64 `json:"total_amount"`
	AdvanceAmount float64 `json:"advance_amount"`

	ReferralCode *string `json:"referral_code,omitempty"`
}

// Create validates and persists a new booking in PAYMENT_PENDING.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Booking, error) {
	propertyType := strings.ToLower(strings.TrimSpace(req.PropertyType))
	if err := validateOccupancy(propertyType, req); err != nil {
		return nil, err
	}

	if !req.CheckoutDatetime.After(req.CheckinDatetime) {
		return nil, errors.ErrBookingDates
	}
	if req.TotalAmount < 0 || req.AdvanceAmount < 0 {
		return nil, errors.ErrInvalidParams.WithMessage("amounts must not be negative")
	}

	booking := &models.Booking{
		BookingID:        utils.GenerateBookingID(BookingIDPrefix),
		GuestName:        req.GuestName,
		GuestEmail:       req.GuestEmail,
		GuestPhone:       req.GuestPhone,
		PropertyName:     req.PropertyName,
		PropertyType:     propertyType,
		PropertyPlace:    req.PropertyPlace,
		MapLink:          req.MapLink,
		OwnerName:        req.OwnerName,
		OwnerEmail:       req.OwnerEmail,
		OwnerPhone:       req.OwnerPhone,
		CheckinDatetime:  req.CheckinDatetime,
		CheckoutDatetime: req.CheckoutDatetime,
		Persons:          req.Persons,
		MaxCapacity:      req.MaxCapacity,
		VegGuests:        req.VegGuests,
		NonvegGuests:     req.NonvegGuests,
		TotalAmount:      utils.Round2(req.TotalAmount),
		AdvanceAmount:    utils.Round2(req.AdvanceAmount),
		BookingStatus:    models.StatusPaymentPending,
	}

	// Capture referral attribution at creation time. The referrer's
	// classification is frozen onto the booking so later rate changes
	// never alter a settled split.
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		code := strings.TrimSpace(*req.ReferralCode)
		booking.ReferralCode = &code
		if referrer, err := s.referralRepo.GetUserByCode(ctx, code); err == nil {
			booking.ReferralType = &referrer.ReferralType
		} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if s.metrics != nil {
		s.metrics.BookingCreated(propertyType)
	}
	logger.Info("booking created",
		logger.BookingID(booking.BookingID),
		logger.String("property_type", propertyType),
		logger.Float64("advance_amount", booking.AdvanceAmount),
	)

	return booking, nil
}

// validateOccupancy enforces the type-specific occupancy contract:
// villas carry persons/max_capacity and nothing else, camping and
// cottage stays carry veg/nonveg guest counts and nothing else.
func validateOccupancy(propertyType string, req *CreateRequest) error {
	switch propertyType {
	case models.PropertyTypeVilla:
		if req.Persons == nil || req.MaxCapacity == nil {
			return errors.ErrOccupancyFields.WithMessage("villa bookings require persons and max_capacity")
		}
		if req.VegGuests != nil || req.NonvegGuests != nil {
			return errors.ErrOccupancyFields.WithMessage("villa bookings must not carry guest-count fields")
		}
	case models.PropertyTypeCamping, models.PropertyTypeCottage:
		if req.VegGuests == nil || req.NonvegGuests == nil {
			return errors.ErrOccupancyFields.WithMessage(propertyType + " bookings require veg_guests and nonveg_guests")
		}
		if req.Persons != nil || req.MaxCapacity != nil {
			return errors.ErrOccupancyFields.WithMessage(propertyType + " bookings must not carry persons or max_capacity")
		}
	default:
		return errors.ErrInvalidParams.WithMessage("unknown property type: " + propertyType)
	}
	return nil
}

// UpdateStatusRequest is the status update payload. All fields except
// BookingID are optional; supplied payment fields are persisted
// atomically with the status change.
type UpdateStatusRequest struct {
	BookingID     string  `json:"booking_id" binding:"required"`
	BookingStatus *string `json:"booking_status,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
	OrderID       *string `json:"order_id,omitempty"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// UpdateStatus applies a validated lifecycle transition. A request for
// the booking's current status succeeds without touching the row.
func (s *Service) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	fields := map[string]interface{}{}
	if req.PaymentStatus != nil {
		fields["payment_status"] = *req.PaymentStatus
	}
	if req.OrderID != nil {
		fields["order_id"] = *req.OrderID
	}
	if req.TransactionID != nil {
		fields["transaction_id"] = *req.TransactionID
	}

	if req.BookingStatus != nil {
		requested := *req.BookingStatus
		apply, err := ValidateTransition(booking.BookingStatus, requested)
		if err != nil {
			if s.metrics != nil {
				s.metrics.TransitionApplied(requested, "rejected")
			}
			return nil, err
		}
		if !apply {
			if s.metrics != nil {
				s.metrics.TransitionApplied(requested, "noop")
			}
			logger.Info("booking status unchanged",
				logger.BookingID(booking.BookingID),
				logger.String("status", booking.BookingStatus),
			)
			return booking, nil
		}

		fields["booking_status"] = requested
		if requested == models.StatusTicketGenerated && booking.TicketToken == nil {
			fields["ticket_token"] = utils.GenerateTicketToken()
		}
	}

	if len(fields) == 0 {
		return booking, nil
	}

	if err := s.bookingRepo.UpdateFields(ctx, booking.ID, fields); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	updated, err := s.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if req.BookingStatus != nil {
		if s.metrics != nil {
			s.metrics.TransitionApplied(*req.BookingStatus, "applied")
		}
		logger.Info("booking status updated",
			logger.BookingID(booking.BookingID),
			logger.String("from", booking.BookingStatus),
			logger.String("to", updated.BookingStatus),
		)
		s.invalidateTicketCache(ctx, updated)
	}

	return updated, nil
}

// Get fetches a booking by its external identifier.
func (s *Service) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return booking, nil
}

// List returns bookings matching the filter.
func (s *Service) List(ctx context.Context, filter *repository.BookingFilter, page *utils.Pagination) ([]*models.Booking, int64, error) {
	bookings, total, err := s.bookingRepo.List(ctx, filter, page.GetOffset(), page.GetLimit())
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return bookings, total, nil
}

// invalidateTicketCache drops any cached ticket views after a status
// change so guests never see a stale gate decision.
func (s *Service) invalidateTicketCache(ctx context.Context, booking *models.Booking) {
	if s.store == nil {
		return
	}
	keys := []string{cache.BuildKey(cache.KeyPrefixTicket, booking.BookingID)}
	if booking.TicketToken != nil {
		keys = append(keys, cache.BuildKey(cache.KeyPrefixTicket, *booking.TicketToken))
	}
	if err := s.store.Delete(ctx, keys...); err != nil {
		logger.Warn("failed to invalidate ticket cache",
			logger.BookingID(booking.BookingID),
			logger.Err(err),
		)
	}
}
