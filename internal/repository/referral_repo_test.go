package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/havenstays/booking-backend/internal/models"
)

func createTestReferralUser(t *testing.T, db *gorm.DB, code, status string) *models.ReferralUser {
	t.Helper()

	user := &models.ReferralUser{
		Name:         "Ravi Kumar",
		ReferralCode: code,
		ReferralType: models.ReferralTypeOwner,
		Status:       status,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestReferralRepository_GetActiveUserByCode(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewReferralRepository(db)
	ctx := context.Background()

	createTestReferralUser(t, db, "OWN10", models.ReferralUserStatusActive)
	createTestReferralUser(t, db, "OWN11", models.ReferralUserStatusInactive)

	user, err := repo.GetActiveUserByCode(ctx, "OWN10")
	require.NoError(t, err)
	assert.Equal(t, "OWN10", user.ReferralCode)
	assert.True(t, user.IsActive())

	// Inactive partners are invisible to the active lookup.
	_, err = repo.GetActiveUserByCode(ctx, "OWN11")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetActiveUserByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReferralRepository_CreditCommission(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewReferralRepository(db)
	ctx := context.Background()

	user := createTestReferralUser(t, db, "OWN20", models.ReferralUserStatusActive)

	require.NoError(t, repo.CreditCommission(ctx, user.ID, "HS4001", 50))
	require.NoError(t, repo.CreditCommission(ctx, user.ID, "HS4002", 80))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 130.0, got.Balance)

	txns, total, err := repo.ListTransactions(ctx, user.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, models.TransactionTypeEarning, txn.Type)
		assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	}

	count, err := repo.CountTransactionsByBooking(ctx, "HS4001")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
