package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/service"
)

func Register(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterRequest
		if !bindJSON(c, app, &req) {
			return
		}
		res, err := service.Register(c.Request.Context(), app.UserRepo(), app.Tokens(), &req, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to register")
			return
		}
		app.Logger().Infof("registered user %s", res.User.ID)
		HandleCreated(c, app.Logger(), res)
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.LoginRequest
		if !bindJSON(c, app, &req) {
			return
		}
		res, err := service.Login(c.Request.Context(), app.UserRepo(), app.GoalRepo(), app.Tokens(), &req, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to log in")
			return
		}
		HandleSuccess(c, app.Logger(), res, nil)
	}
}

func Health(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), gin.H{"status": "ok", "time": app.Now()}, nil)
	}
}
