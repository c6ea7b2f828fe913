package settlement

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/havenstays/booking-backend/internal/common/errors"
	"github.com/havenstays/booking-backend/internal/common/logger"
	"github.com/havenstays/booking-backend/internal/common/metrics"
	"github.com/havenstays/booking-backend/internal/common/utils"
	"github.com/havenstays/booking-backend/internal/models"
	"github.com/havenstays/booking-backend/internal/repository"
)

// DistributionService runs commission settlement cycles.
type DistributionService struct {
	db                  *gorm.DB
	bookingRepo         *repository.BookingRepository
	rates               *RateTable
	advanceShare        float64
	noReferralAdminRate float64
	metrics             *metrics.Metrics
}

// NewDistributionService creates the distribution service.
// advanceShare is the fraction of the total collected as advance, used
// to derive missing totals; noReferralAdminRate is the flat admin
// share applied to bookings made without a referral code.
func NewDistributionService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	rates *RateTable,
	advanceShare float64,
	noReferralAdminRate float64,
	m *metrics.Metrics,
) *DistributionService {
	if rates == nil {
		rates = DefaultRateTable()
	}
	if advanceShare <= 0 {
		advanceShare = DefaultAdvanceShare
	}
	if noReferralAdminRate <= 0 {
		noReferralAdminRate = 0.30
	}
	return &DistributionService{
		db:                  db,
		bookingRepo:         bookingRepo,
		rates:               rates,
		advanceShare:        advanceShare,
		noReferralAdminRate: noReferralAdminRate,
		metrics:             m,
	}
}

// CycleResult summarizes one settlement cycle.
type CycleResult struct {
	Distributed int `json:"distributed"`
	Skipped     int `json:"skipped"`
}

// RunCycle settles every eligible booking once. Eligibility: ticket
// generated, checkout in the past, commission unpaid. Bookings settle
// oldest checkout first. A failure on one booking is logged and the
// cycle moves on; it never aborts the run.
//
// The cycle is safe under concurrent invocation: each booking settles
// inside its own transaction holding a row lock, and commission_paid is
// re-checked under that lock before any money moves.
func (s *DistributionService) RunCycle(ctx context.Context) (*CycleResult, error) {
	now := time.Now()
	eligible, err := s.bookingRepo.ListEligibleForSettlement(ctx, now)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	result := &CycleResult{}
	for _, booking := range eligible {
		outcome, err := s.SettleBooking(ctx, booking.BookingID)
		if err != nil {
			logger.Error("settlement failed",
				logger.BookingID(booking.BookingID),
				logger.Err(err),
			)
			result.Skipped++
			s.record("failed")
			continue
		}
		switch outcome {
		case OutcomeDistributed, OutcomeDistributedNoReferrer:
			result.Distributed++
			s.record("distributed")
		default:
			result.Skipped++
			s.record("skipped")
		}
	}

	if s.metrics != nil {
		s.metrics.CycleExecuted()
	}
	logger.Info("distribution cycle finished",
		logger.Int("eligible", len(eligible)),
		logger.Int("distributed", result.Distributed),
		logger.Int("skipped", result.Skipped),
	)

	return result, nil
}

// Settlement outcomes.
type Outcome string

const (
	OutcomeDistributed           Outcome = "distributed"
	OutcomeDistributedNoReferrer Outcome = "distributed_no_referrer"
	OutcomeSkipped               Outcome = "skipped"
)

// SettleBooking settles a single booking inside its own transaction.
// The row is locked, commission_paid is re-checked under the lock, and
// the ledger insert, balance increment and booking update commit
// together or not at all.
func (s *DistributionService) SettleBooking(ctx context.Context, bookingID string) (Outcome, error) {
	outcome := OutcomeSkipped

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_id = ?", bookingID).
			First(&booking).Error; err != nil {
			return err
		}

		// A concurrent cycle may have settled this booking between the
		// eligibility scan and our lock. The re-check under the lock is
		// the exactly-once guarantee.
		if booking.CommissionPaid {
			logger.Info("commission already distributed, skipping",
				logger.BookingID(booking.BookingID),
			)
			outcome = OutcomeSkipped
			return nil
		}

		totalAmount := ResolveTotalAmountWith(&booking, s.advanceShare)
		if totalAmount <= 0 {
			// Left unpaid so the booking stays eligible once the
			// amounts are corrected.
			logger.Warn("cannot resolve total amount, skipping",
				logger.BookingID(booking.BookingID),
			)
			outcome = OutcomeSkipped
			return nil
		}

		if booking.ReferralCode == nil || *booking.ReferralCode == "" {
			return s.settleWithoutReferral(ctx, tx, &booking, totalAmount, &outcome)
		}
		return s.settleWithReferral(ctx, tx, &booking, totalAmount, &outcome)
	})
	if err != nil {
		return OutcomeSkipped, err
	}
	return outcome, nil
}

// settleWithoutReferral credits the admin a flat share and closes the
// booking with a zero referrer commission.
func (s *DistributionService) settleWithoutReferral(ctx context.Context, tx *gorm.DB, booking *models.Booking, totalAmount float64, outcome *Outcome) error {
	adminAmount := utils.Round2(totalAmount * s.noReferralAdminRate)

	if err := markDistributed(ctx, tx, booking, models.CommissionStatusDistributed, adminAmount, 0); err != nil {
		return err
	}

	logger.Info("commission distributed without referral",
		logger.BookingID(booking.BookingID),
		logger.Float64("admin_commission", adminAmount),
	)
	*outcome = OutcomeDistributed
	return nil
}

// settleWithReferral splits the total between referrer and admin. A
// referral code pointing at no active referrer closes the booking as
// DISTRIBUTED_NO_REFERRER with no money moved; the distinct status
// keeps the audit trail honest.
func (s *DistributionService) settleWithReferral(ctx context.Context, tx *gorm.DB, booking *models.Booking, totalAmount float64, outcome *Outcome) error {
	referralRepo := repository.NewReferralRepository(tx)

	referrer, err := referralRepo.GetActiveUserByCode(ctx, *booking.ReferralCode)
	if err != nil {
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := markDistributed(ctx, tx, booking, models.CommissionStatusDistributedNoReferrer, 0, 0); err != nil {
			return err
		}
		logger.Warn("no active referrer for code, closing without payout",
			logger.BookingID(booking.BookingID),
			logger.ReferralCode(*booking.ReferralCode),
		)
		*outcome = OutcomeDistributedNoReferrer
		return nil
	}

	referralType := referrer.ReferralType
	if booking.ReferralType != nil && *booking.ReferralType != "" {
		referralType = *booking.ReferralType
	}
	split := s.rates.CalcCommission(totalAmount, referralType)

	if err := referralRepo.CreditCommission(ctx, referrer.ID, booking.BookingID, split.ReferrerAmount); err != nil {
		return err
	}

	if err := markDistributed(ctx, tx, booking, models.CommissionStatusDistributed, split.AdminAmount, split.ReferrerAmount); err != nil {
		return err
	}

	logger.Info("commission distributed",
		logger.BookingID(booking.BookingID),
		logger.ReferralCode(*booking.ReferralCode),
		logger.Float64("referrer_commission", split.ReferrerAmount),
		logger.Float64("admin_commission", split.AdminAmount),
	)
	*outcome = OutcomeDistributed
	return nil
}

// markDistributed closes a booking's commission fields in one update.
func markDistributed(ctx context.Context, tx *gorm.DB, booking *models.Booking, status string, adminAmount, referrerAmount float64) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"commission_paid":     true,
			"commission_status":   status,
			"admin_commission":    adminAmount,
			"referrer_commission": referrerAmount,
		}).Error
}

func (s *DistributionService) record(result string) {
	if s.metrics != nil {
		s.metrics.SettlementResult(result)
	}
}
