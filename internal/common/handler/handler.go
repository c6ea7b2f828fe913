// Package handler provides shared helpers for gin handlers.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/havenstays/booking-backend/internal/common/errors"
	"github.com/havenstays/booking-backend/internal/common/logger"
	"github.com/havenstays/booking-backend/internal/common/response"
	"github.com/havenstays/booking-backend/internal/common/utils"
)

// HandleError maps a service error onto the response envelope.
func HandleError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr.Err != nil {
		logger.Error("request failed",
			logger.String("path", c.FullPath()),
			logger.Int("code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// BindJSON binds the request body, sending a 400 on failure. Returns
// false when binding failed and the response has been written.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// BindQuery binds query parameters, sending a 400 on failure.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return false
	}
	return true
}

// BindPagination reads page/page_size query parameters with defaults.
func BindPagination(c *gin.Context) *utils.Pagination {
	p := &utils.Pagination{}
	_ = c.ShouldBindQuery(p)
	p.Normalize()
	return p
}
