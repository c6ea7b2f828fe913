// Package main is the application entry point.
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/havenstays/booking-backend/internal/common/cache"
	"github.com/havenstays/booking-backend/internal/common/config"
	"github.com/havenstays/booking-backend/internal/common/jwt"
	"github.com/havenstays/booking-backend/internal/common/metrics"
	"github.com/havenstays/booking-backend/internal/common/qrcode"
	adminHandler "github.com/havenstays/booking-backend/internal/handler/admin"
	bookingHandler "github.com/havenstays/booking-backend/internal/handler/booking"
	ticketHandler "github.com/havenstays/booking-backend/internal/handler/ticket"
	"github.com/havenstays/booking-backend/internal/middleware"
	"github.com/havenstays/booking-backend/internal/repository"
	"github.com/havenstays/booking-backend/internal/scheduler"
	bookingService "github.com/havenstays/booking-backend/internal/service/booking"
	"github.com/havenstays/booking-backend/internal/service/settlement"
	ticketService "github.com/havenstays/booking-backend/internal/service/ticket"
)

// setupRouter wires repositories, services and handlers onto the
// engine and returns the configured background scheduler.
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) *scheduler.Scheduler {
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:           cfg.JWT.Secret,
		AccessExpireTime: cfg.JWT.AccessTokenDuration(),
		Issuer:           cfg.JWT.Issuer,
	})

	bookingRepo := repository.NewBookingRepository(db)
	referralRepo := repository.NewReferralRepository(db)

	store := cache.NewStore(redisClient)
	m := metrics.New(nil)
	qrGen := qrcode.NewGenerator()

	bookingSvc := bookingService.NewService(bookingRepo, referralRepo, store, m)
	ticketSvc := ticketService.NewService(
		bookingRepo,
		store,
		qrGen,
		time.Duration(cfg.Business.Booking.TicketCacheTTL)*time.Second,
		m,
	)
	distributionSvc := settlement.NewDistributionService(
		db,
		bookingRepo,
		settlement.DefaultRateTable(),
		cfg.Business.Booking.AdvanceShare,
		cfg.Business.Distribution.NoReferralAdminRate,
		m,
	)

	bookingH := bookingHandler.NewHandler(bookingSvc)
	ticketH := ticketHandler.NewHandler(ticketSvc)
	adminH := adminHandler.NewHandler(distributionSvc, referralRepo)

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSWithOrigins(cfg.CORS.AllowedOrigins...))
	r.Use(middleware.AccessLog(logger))
	r.Use(m.GinMiddleware())

	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	v1 := r.Group("/api/v1")
	{
		// Public endpoints. Ticket viewing parses an optional bearer
		// token so admins can bypass the expiry rule.
		v1.POST("/bookings", bookingH.Create)
		v1.POST("/bookings/status", bookingH.UpdateStatus)
		v1.GET("/tickets", middleware.OptionalAuth(jwtManager), ticketH.Get)

		// Back-office endpoints.
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(jwtManager))
		{
			admin.GET("/bookings", bookingH.List)
			admin.GET("/bookings/:booking_id", bookingH.Get)
			admin.POST("/distribution/run", adminH.RunDistribution)
			admin.GET("/referrers/:id/transactions", adminH.ListReferrerTransactions)
		}
	}

	// Commission settlement runs on a fixed interval; the endpoint
	// above triggers extra cycles on demand.
	tasks := scheduler.NewTaskHandler(distributionSvc)
	sched := scheduler.NewScheduler()
	sched.AddTask(
		"distribute-commissions",
		time.Duration(cfg.Business.Distribution.CycleInterval)*time.Minute,
		tasks.DistributeCommissions,
	)

	return sched
}
