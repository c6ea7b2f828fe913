package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/havenstays/booking-backend/internal/common/cache"
	"github.com/havenstays/booking-backend/internal/common/errors"
	"github.com/havenstays/booking-backend/internal/common/qrcode"
	"github.com/havenstays/booking-backend/internal/models"
	"github.com/havenstays/booking-backend/internal/repository"
)

func setupTicketTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Booking{}))

	svc := NewService(repository.NewBookingRepository(db), nil, nil, time.Minute, nil)
	return svc, db
}

func createTicketBooking(t *testing.T, db *gorm.DB, bookingID, status string, checkout time.Time) *models.Booking {
	t.Helper()

	place := "Wayanad, Kerala"
	mapLink := "https://maps.example.com/?q=hilltop-villa"
	ownerName := "Thomas George"
	token := "tok-" + bookingID
	booking := &models.Booking{
		BookingID:        bookingID,
		GuestName:        "Asha Nair",
		PropertyName:     "Hilltop Villa",
		PropertyType:     models.PropertyTypeVilla,
		PropertyPlace:    &place,
		MapLink:          &mapLink,
		OwnerName:        &ownerName,
		CheckinDatetime:  checkout.Add(-48 * time.Hour),
		CheckoutDatetime: checkout,
		TotalAmount:      1000,
		AdvanceAmount:    300,
		BookingStatus:    status,
		TicketToken:      &token,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func TestGet_FullView(t *testing.T) {
	svc, db := setupTicketTest(t)
	ctx := context.Background()

	createTicketBooking(t, db, "HS6001", models.StatusTicketGenerated, time.Now().Add(48*time.Hour))

	view, err := svc.Get(ctx, Lookup{BookingID: "HS6001"}, false)
	require.NoError(t, err)
	assert.Equal(t, ViewKindFull, view.Kind)
	assert.Equal(t, 700.0, view.DueAmount)
	require.NotNil(t, view.OwnerName)
	assert.Equal(t, "Thomas George", *view.OwnerName)
	require.NotNil(t, view.PropertyPlace)
	require.NotNil(t, view.MapLink)
	assert.Equal(t, "https://maps.example.com/?q=hilltop-villa", *view.MapLink)
}

func TestGet_ByToken(t *testing.T) {
	svc, db := setupTicketTest(t)
	ctx := context.Background()

	createTicketBooking(t, db, "HS6002", models.StatusTicketGenerated, time.Now().Add(48*time.Hour))

	view, err := svc.Get(ctx, Lookup{Token: "tok-HS6002"}, false)
	require.NoError(t, err)
	assert.Equal(t, "HS6002", view.BookingID)
}

func TestGet_LegacyConfirmedIsTicketEligible(t *testing.T) {
	svc, db := setupTicketTest(t)
	ctx := context.Background()

	createTicketBooking(t, db, "HS6003", models.StatusConfirmed, time.Now().Add(48*time.Hour))

	view, err := svc.Get(ctx, Lookup{BookingID: "HS6003"}, false)
	require.NoError(t, err)
	assert.Equal(t, ViewKindFull, view.Kind)
}

func TestGet_PendingView(t *testing.T) {
	svc, db := setupTicketTest(t)
	ctx := context.Background()

	for i, status := range []string{
		models.StatusPaymentSuccess,
		models.StatusRequestSentToOwner,
		models.StatusPendingOwnerConfirmation,
	} {
		bookingID := "HS610" + string(rune('0'+i))
		createTicketBooking(t, db, bookingID, status, time.Now().Add(48*time.Hour))

		view, err := svc.Get(ctx, Lookup{BookingID: bookingID}, false)
		require.NoError(t, err, status)
		assert.Equal(t, ViewKindPending, view.Kind)
		assert.Equal(t, 700.0, view.DueAmount)

		// Pending views carry no owner or location data.
		assert.Nil(t, view.OwnerName)
		assert.Nil(t, view.PropertyPlace)
		assert.Nil(t, view.MapLink)
	}
}

func TestGet_BlockedStatuses(t *testing.T) {
	svc, db := setupTicketTest(t)
	ctx := context.Background()

	// Owner cancellation gets its own message, distinct from the
	// generic denial.
	createTicketBooking(t, db, "HS6201", models.StatusCancelledByOwner, time.Now().Add(48*time.Hour))
	_, err := svc.Get(ctx, Lookup{BookingID: "HS6201"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTicketOwnerCancelled))

	for i, status := range []string{
		models.StatusPaymentFailed,
		models.StatusPaymentPending,
		models.StatusCancelledNoRefund,
	} {
		bookingID := "HS621" + string(rune('0'+i))
		createTicketBooking(t, db, bookingID, status, time.Now().Add(48*time.Hour))

		_, err := svc.Get(ctx, Lookup{BookingID: bookingID}, false)
		require.Error(t, err, status)
		assert.True(t, errors.Is(err, errors.ErrTicketUnavailable), status)
	}
}

func TestGet_NotYetTicketed(t *testing.T) {
	svc, db := setupTicketTest(t)
	ctx := context.Background()

	createTicketBooking(t, db, "HS6301", models.StatusRefundRequired, time.Now().Add(48*time.Hour))

	_, err := svc.Get(ctx, Lookup{BookingID: "HS6301"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTicketNotReady))
}

func TestGet_ExpiryPrecedesEverything(t *testing.T) {
	svc, db := setupTicketTest(t)
	ctx := context.Background()

	// Even a fully ticketed booking expires once checkout passes.
	createTicketBooking(t, db, "HS6401", models.StatusTicketGenerated, time.Now().Add(-time.Hour))

	_, err := svc.Get(ctx, Lookup{BookingID: "HS6401"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTicketExpired))

	// Admins bypass expiry.
	view, err := svc.Get(ctx, Lookup{BookingID: "HS6401"}, true)
	require.NoError(t, err)
	assert.Equal(t, ViewKindFull, view.Kind)
}

func TestGet_NotFoundAndBadLookup(t *testing.T) {
	svc, _ := setupTicketTest(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, Lookup{BookingID: "missing"}, false)
	assert.True(t, errors.Is(err, errors.ErrBookingNotFound))

	_, err = svc.Get(ctx, Lookup{}, false)
	assert.True(t, errors.Is(err, errors.ErrInvalidParams))
}

func TestGet_FullViewCachedAndQREmbedded(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewStore(client)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Booking{}))

	svc := NewService(repository.NewBookingRepository(db), store, qrcode.NewGenerator(), time.Minute, nil)
	ctx := context.Background()

	createTicketBooking(t, db, "HS6501", models.StatusTicketGenerated, time.Now().Add(48*time.Hour))

	view, err := svc.Get(ctx, Lookup{BookingID: "HS6501"}, false)
	require.NoError(t, err)
	assert.Contains(t, view.QRCode, "data:image/png;base64,")

	// Second read is served from cache.
	assert.True(t, mr.Exists("ticket:HS6501"))
	cached, err := svc.Get(ctx, Lookup{BookingID: "HS6501"}, false)
	require.NoError(t, err)
	assert.Equal(t, view.QRCode, cached.QRCode)
}
