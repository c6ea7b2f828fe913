// Package admin provides back-office HTTP handlers.
package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/havenstays/booking-backend/internal/common/errors"
	commonhandler "github.com/havenstays/booking-backend/internal/common/handler"
	"github.com/havenstays/booking-backend/internal/common/response"
	"github.com/havenstays/booking-backend/internal/repository"
	"github.com/havenstays/booking-backend/internal/service/settlement"
)

// Handler serves admin endpoints.
type Handler struct {
	distribution *settlement.DistributionService
	referralRepo *repository.ReferralRepository
}

// NewHandler creates an admin handler.
func NewHandler(distribution *settlement.DistributionService, referralRepo *repository.ReferralRepository) *Handler {
	return &Handler{
		distribution: distribution,
		referralRepo: referralRepo,
	}
}

// RunDistribution triggers a settlement cycle
// @Summary Run a commission distribution cycle
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=settlement.CycleResult}
// @Router /api/v1/admin/distribution/run [post]
func (h *Handler) RunDistribution(c *gin.Context) {
	result, err := h.distribution.RunCycle(c.Request.Context())
	if err != nil {
		commonhandler.HandleError(c, err)
		return
	}

	response.Success(c, result)
}

// ListReferrerTransactions lists a referrer's earnings ledger
// @Summary List referrer commission transactions
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path int true "referrer ID"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/admin/referrers/{id}/transactions [get]
func (h *Handler) ListReferrerTransactions(c *gin.Context) {
	referrerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid referrer id")
		return
	}
	page := commonhandler.BindPagination(c)

	if _, err := h.referralRepo.GetUserByID(c.Request.Context(), referrerID); err != nil {
		commonhandler.HandleError(c, errors.ErrReferrerNotFound)
		return
	}

	txns, total, err := h.referralRepo.ListTransactions(c.Request.Context(), referrerID, page.GetOffset(), page.GetLimit())
	if err != nil {
		commonhandler.HandleError(c, errors.ErrDatabaseError.WithError(err))
		return
	}

	response.SuccessPage(c, txns, total, page.Page, page.PageSize)
}
