// Package repository provides the data access layer.
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/havenstays/booking-backend/internal/models"
)

// BookingRepository is the booking store.
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// GetByID fetches a booking by primary key.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByBookingID fetches a booking by its external booking identifier.
func (r *BookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByTicketToken fetches a booking by its ticket token.
func (r *BookingRepository) GetByTicketToken(ctx context.Context, token string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("ticket_token = ?", token).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByBookingIDForUpdate fetches a booking by external identifier with
// a row lock. Must be called inside a transaction.
func (r *BookingRepository) GetByBookingIDForUpdate(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Update saves all fields of a booking.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// UpdateFields updates the given fields of a booking.
func (r *BookingRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(fields).Error
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	BookingStatus string
	PropertyType  string
	ReferralCode  string
	CheckinFrom   *time.Time
	CheckinTo     *time.Time
}

// List returns bookings matching the filter, newest first.
func (r *BookingRepository) List(ctx context.Context, filter *BookingFilter, offset, limit int) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter != nil {
		if filter.BookingStatus != "" {
			query = query.Where("booking_status = ?", filter.BookingStatus)
		}
		if filter.PropertyType != "" {
			query = query.Where("property_type = ?", filter.PropertyType)
		}
		if filter.ReferralCode != "" {
			query = query.Where("referral_code = ?", filter.ReferralCode)
		}
		if filter.CheckinFrom != nil {
			query = query.Where("checkin_datetime >= ?", *filter.CheckinFrom)
		}
		if filter.CheckinTo != nil {
			query = query.Where("checkin_datetime < ?", *filter.CheckinTo)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListEligibleForSettlement returns bookings due for commission
// distribution: ticket generated, stay completed, commission unpaid.
// Ordered by checkout so older stays settle first.
func (r *BookingRepository) ListEligibleForSettlement(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("booking_status = ?", models.StatusTicketGenerated).
		Where("checkout_datetime < ?", now).
		Where("commission_paid = ?", false).
		Order("checkout_datetime ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
