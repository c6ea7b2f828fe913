package settlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/havenstays/booking-backend/internal/models"
	"github.com/havenstays/booking-backend/internal/repository"
)

func setupDistributionTest(t *testing.T) (*DistributionService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Booking{},
		&models.ReferralUser{},
		&models.ReferralTransaction{},
	)
	require.NoError(t, err)

	svc := NewDistributionService(db, repository.NewBookingRepository(db), DefaultRateTable(), DefaultAdvanceShare, 0.30, nil)
	return svc, db
}

func createEligibleBooking(t *testing.T, db *gorm.DB, bookingID string, total, advance float64, referralCode, referralType *string) *models.Booking {
	t.Helper()

	now := time.Now()
	booking := &models.Booking{
		BookingID:        bookingID,
		GuestName:        "Asha Nair",
		PropertyName:     "Hilltop Villa",
		PropertyType:     models.PropertyTypeVilla,
		CheckinDatetime:  now.Add(-72 * time.Hour),
		CheckoutDatetime: now.Add(-24 * time.Hour),
		TotalAmount:      total,
		AdvanceAmount:    advance,
		BookingStatus:    models.StatusTicketGenerated,
		ReferralCode:     referralCode,
		ReferralType:     referralType,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func createActiveReferrer(t *testing.T, db *gorm.DB, code, referralType string) *models.ReferralUser {
	t.Helper()

	user := &models.ReferralUser{
		Name:         "Ravi Kumar",
		ReferralCode: code,
		ReferralType: referralType,
		Status:       models.ReferralUserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func strPtr(s string) *string { return &s }

func TestRunCycle_WithReferral(t *testing.T) {
	svc, db := setupDistributionTest(t)
	ctx := context.Background()

	referrer := createActiveReferrer(t, db, "OWN01", models.ReferralTypeOwner)
	createEligibleBooking(t, db, "HS5001", 1000, 300, strPtr("OWN01"), strPtr(models.ReferralTypeOwner))

	result, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Distributed)
	assert.Equal(t, 0, result.Skipped)

	var booking models.Booking
	require.NoError(t, db.Where("booking_id = ?", "HS5001").First(&booking).Error)
	assert.True(t, booking.CommissionPaid)
	assert.Equal(t, models.CommissionStatusDistributed, *booking.CommissionStatus)
	assert.Equal(t, 250.0, *booking.ReferrerCommission)
	assert.Equal(t, 50.0, *booking.AdminCommission)

	var user models.ReferralUser
	require.NoError(t, db.First(&user, referrer.ID).Error)
	assert.Equal(t, 250.0, user.Balance)

	var txns []models.ReferralTransaction
	require.NoError(t, db.Where("booking_id = ?", "HS5001").Find(&txns).Error)
	require.Len(t, txns, 1)
	assert.Equal(t, 250.0, txns[0].Amount)
	assert.Equal(t, models.TransactionTypeEarning, txns[0].Type)
	assert.Equal(t, models.TransactionStatusCompleted, txns[0].Status)
}

func TestRunCycle_WithoutReferral(t *testing.T) {
	svc, db := setupDistributionTest(t)
	ctx := context.Background()

	createEligibleBooking(t, db, "HS5002", 2000, 600, nil, nil)

	result, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Distributed)

	var booking models.Booking
	require.NoError(t, db.Where("booking_id = ?", "HS5002").First(&booking).Error)
	assert.True(t, booking.CommissionPaid)
	assert.Equal(t, models.CommissionStatusDistributed, *booking.CommissionStatus)
	assert.Equal(t, 600.0, *booking.AdminCommission)
	assert.Equal(t, 0.0, *booking.ReferrerCommission)

	var count int64
	require.NoError(t, db.Model(&models.ReferralTransaction{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRunCycle_NoActiveReferrer(t *testing.T) {
	svc, db := setupDistributionTest(t)
	ctx := context.Background()

	// Inactive referrer: code resolves to nobody payable.
	inactive := &models.ReferralUser{
		Name:         "Old Partner",
		ReferralCode: "OLD99",
		ReferralType: models.ReferralTypeB2B,
		Status:       models.ReferralUserStatusInactive,
	}
	require.NoError(t, db.Create(inactive).Error)

	createEligibleBooking(t, db, "HS5003", 1000, 300, strPtr("OLD99"), strPtr(models.ReferralTypeB2B))

	result, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	// Still counted as distributed: there is no payable obligation.
	assert.Equal(t, 1, result.Distributed)

	var booking models.Booking
	require.NoError(t, db.Where("booking_id = ?", "HS5003").First(&booking).Error)
	assert.True(t, booking.CommissionPaid)
	assert.Equal(t, models.CommissionStatusDistributedNoReferrer, *booking.CommissionStatus)
	assert.Equal(t, 0.0, *booking.AdminCommission)
	assert.Equal(t, 0.0, *booking.ReferrerCommission)

	var user models.ReferralUser
	require.NoError(t, db.First(&user, inactive.ID).Error)
	assert.Equal(t, 0.0, user.Balance)
}

func TestRunCycle_DerivedTotalFromAdvance(t *testing.T) {
	svc, db := setupDistributionTest(t)
	ctx := context.Background()

	createActiveReferrer(t, db, "OWN02", models.ReferralTypeOwner)
	// No stored total; 300 advance implies a 1000 total.
	createEligibleBooking(t, db, "HS5004", 0, 300, strPtr("OWN02"), strPtr(models.ReferralTypeOwner))

	result, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Distributed)

	var booking models.Booking
	require.NoError(t, db.Where("booking_id = ?", "HS5004").First(&booking).Error)
	assert.Equal(t, 250.0, *booking.ReferrerCommission)
	assert.Equal(t, 50.0, *booking.AdminCommission)
}

func TestRunCycle_ConfiguredAdvanceShare(t *testing.T) {
	_, db := setupDistributionTest(t)
	ctx := context.Background()

	// A platform configured for 25% advances derives a larger total
	// from the same advance.
	svc := NewDistributionService(db, repository.NewBookingRepository(db), DefaultRateTable(), 0.25, 0.30, nil)

	createActiveReferrer(t, db, "OWN06", models.ReferralTypeOwner)
	createEligibleBooking(t, db, "HS5010", 0, 300, strPtr("OWN06"), strPtr(models.ReferralTypeOwner))

	result, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Distributed)

	// 300 / 0.25 = 1200 total; owner split 25% / 5%.
	var booking models.Booking
	require.NoError(t, db.Where("booking_id = ?", "HS5010").First(&booking).Error)
	assert.Equal(t, 300.0, *booking.ReferrerCommission)
	assert.Equal(t, 60.0, *booking.AdminCommission)
}

func TestRunCycle_UnresolvableTotalSkipped(t *testing.T) {
	svc, db := setupDistributionTest(t)
	ctx := context.Background()

	createEligibleBooking(t, db, "HS5005", 0, 0, nil, nil)

	result, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Distributed)
	assert.Equal(t, 1, result.Skipped)

	// Never marked paid: the booking stays eligible for a later cycle
	// once the amounts are corrected.
	var booking models.Booking
	require.NoError(t, db.Where("booking_id = ?", "HS5005").First(&booking).Error)
	assert.False(t, booking.CommissionPaid)
	assert.Nil(t, booking.CommissionStatus)
}

func TestSettleBooking_ExactlyOnce(t *testing.T) {
	svc, db := setupDistributionTest(t)
	ctx := context.Background()

	referrer := createActiveReferrer(t, db, "OWN03", models.ReferralTypeOwner)
	createEligibleBooking(t, db, "HS5006", 1000, 300, strPtr("OWN03"), strPtr(models.ReferralTypeOwner))

	outcome, err := svc.SettleBooking(ctx, "HS5006")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDistributed, outcome)

	// Second settlement hits the commission_paid re-check under the
	// lock and backs off.
	outcome, err = svc.SettleBooking(ctx, "HS5006")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	var count int64
	require.NoError(t, db.Model(&models.ReferralTransaction{}).Where("booking_id = ?", "HS5006").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var user models.ReferralUser
	require.NoError(t, db.First(&user, referrer.ID).Error)
	assert.Equal(t, 250.0, user.Balance)
}

func TestSettleBooking_ConcurrentRuns(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Pin the pool to one connection so both workers share the same
	// in-memory database and their transactions serialize at the row.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Booking{},
		&models.ReferralUser{},
		&models.ReferralTransaction{},
	))

	svc := NewDistributionService(db, repository.NewBookingRepository(db), DefaultRateTable(), DefaultAdvanceShare, 0.30, nil)

	referrer := createActiveReferrer(t, db, "OWN07", models.ReferralTypeOwner)
	createEligibleBooking(t, db, "HS5011", 1000, 300, strPtr("OWN07"), strPtr(models.ReferralTypeOwner))

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = svc.SettleBooking(context.Background(), "HS5011")
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Whichever worker loses the race backs off at the re-check.
	var distributed, skipped int
	for _, outcome := range outcomes {
		switch outcome {
		case OutcomeDistributed:
			distributed++
		case OutcomeSkipped:
			skipped++
		}
	}
	assert.Equal(t, 1, distributed)
	assert.Equal(t, 1, skipped)

	var count int64
	require.NoError(t, db.Model(&models.ReferralTransaction{}).Where("booking_id = ?", "HS5011").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var user models.ReferralUser
	require.NoError(t, db.First(&user, referrer.ID).Error)
	assert.Equal(t, 250.0, user.Balance)
}

func TestRunCycle_SecondRunIsNoop(t *testing.T) {
	svc, db := setupDistributionTest(t)
	ctx := context.Background()

	createActiveReferrer(t, db, "OWN04", models.ReferralTypeOwner)
	createEligibleBooking(t, db, "HS5007", 1000, 300, strPtr("OWN04"), strPtr(models.ReferralTypeOwner))

	first, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Distributed)

	// Everything already settled; the second cycle sees no eligible rows.
	second, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Distributed)
	assert.Equal(t, 0, second.Skipped)

	var count int64
	require.NoError(t, db.Model(&models.ReferralTransaction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunCycle_IsolatedFailure(t *testing.T) {
	svc, db := setupDistributionTest(t)
	ctx := context.Background()

	createActiveReferrer(t, db, "OWN05", models.ReferralTypeOwner)

	// An unresolvable booking followed by a healthy one; the first must
	// not block the second.
	createEligibleBooking(t, db, "HS5008", 0, 0, nil, nil)
	healthy := createEligibleBooking(t, db, "HS5009", 1000, 300, strPtr("OWN05"), strPtr(models.ReferralTypeOwner))
	// Older checkout so the broken booking settles first.
	require.NoError(t, db.Model(&models.Booking{}).Where("booking_id = ?", "HS5008").
		Update("checkout_datetime", healthy.CheckoutDatetime.Add(-time.Hour)).Error)

	result, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Distributed)
	assert.Equal(t, 1, result.Skipped)

	var booking models.Booking
	require.NoError(t, db.Where("booking_id = ?", "HS5009").First(&booking).Error)
	assert.True(t, booking.CommissionPaid)
}
