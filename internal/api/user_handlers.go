package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/service"
)

func GetMe(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := service.GetProfile(c.Request.Context(), app.UserRepo(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch profile")
			return
		}
		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func PatchMe(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ProfileRequest
		if !bindJSON(c, app, &req) {
			return
		}
		user, err := service.UpdateProfile(c.Request.Context(), app.UserRepo(), userID(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update profile")
			return
		}
		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func PostPassword(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PasswordRequest
		if !bindJSON(c, app, &req) {
			return
		}
		if err := service.ChangePassword(c.Request.Context(), app.UserRepo(), userID(c), &req); err != nil {
			HandleError(c, app.Logger(), err, "Failed to change password")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
