package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/havenstays/booking-backend/internal/models"
)

// ReferralRepository is the referral partner and ledger store.
type ReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository creates a referral repository.
func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CreateUser inserts a referral partner.
func (r *ReferralRepository) CreateUser(ctx context.Context, user *models.ReferralUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID fetches a referral partner by primary key.
func (r *ReferralRepository) GetUserByID(ctx context.Context, id int64) (*models.ReferralUser, error) {
	var user models.ReferralUser
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByCode fetches a referral partner by code.
func (r *ReferralRepository) GetUserByCode(ctx context.Context, code string) (*models.ReferralUser, error) {
	var user models.ReferralUser
	err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetActiveUserByCode fetches an active referral partner by code.
func (r *ReferralRepository) GetActiveUserByCode(ctx context.Context, code string) (*models.ReferralUser, error) {
	var user models.ReferralUser
	err := r.db.WithContext(ctx).
		Where("referral_code = ? AND status = ?", code, models.ReferralUserStatusActive).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreditCommission appends a ledger entry and increments the partner
// balance. Must be called inside the settlement transaction so the
// ledger and the balance move together.
func (r *ReferralRepository) CreditCommission(ctx context.Context, userID int64, bookingID string, amount float64) error {
	txn := &models.ReferralTransaction{
		ReferralUserID: userID,
		BookingID:      bookingID,
		Amount:         amount,
		Type:           models.TransactionTypeEarning,
		Status:         models.TransactionStatusCompleted,
	}
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&models.ReferralUser{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// ListTransactions returns ledger entries for a partner, newest first.
func (r *ReferralRepository) ListTransactions(ctx context.Context, userID int64, offset, limit int) ([]*models.ReferralTransaction, int64, error) {
	var txns []*models.ReferralTransaction
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.ReferralTransaction{}).
		Where("referral_user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

// CountTransactionsByBooking returns the number of ledger entries tied
// to a booking.
func (r *ReferralRepository) CountTransactionsByBooking(ctx context.Context, bookingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReferralTransaction{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error
	return count, err
}
