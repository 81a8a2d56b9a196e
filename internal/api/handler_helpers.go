package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/auth"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/response"
)

// HandleError maps domain errors to status codes. msg is used for server-side failures,
// whose detail is only logged.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")

	var verr *internal.ValidationError
	var berr *internal.BusinessRuleError
	switch {
	case errors.As(err, &verr):
		logger.Debugf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusBadRequest, response.Invalid(verr.Field, strings.TrimSpace(verr.Field+" "+verr.Message)))
	case errors.Is(err, internal.ErrNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("not found"))
	case errors.As(err, &berr):
		logger.Infof("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusUnprocessableEntity, response.NewAppError(http.StatusUnprocessableEntity, berr.Reason))
	case errors.Is(err, internal.ErrConflict):
		c.JSON(http.StatusConflict, response.NewAppError(http.StatusConflict, "already exists"))
	case errors.Is(err, internal.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, response.NewAppError(http.StatusUnauthorized, "invalid credentials"))
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusGatewayTimeout, response.NewAppError(http.StatusGatewayTimeout, "request timed out"))
	default:
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusInternalServerError, response.InternalError(msg))
	}
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

func HandleCreated(c *gin.Context, logger internal.Logger, data interface{}) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Created", requestID)
	c.JSON(http.StatusCreated, response.Success(data, nil))
}

// bindJSON decodes the body; malformed JSON is a 400.
func bindJSON(c *gin.Context, app App, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		app.Logger().Debugf("[request_id=%s] invalid JSON: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusBadRequest, response.BadRequest("invalid JSON body"))
		return false
	}
	return true
}

// userID is the caller set by the auth middleware.
func userID(c *gin.Context) string {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		return ""
	}
	return id.UserID
}
