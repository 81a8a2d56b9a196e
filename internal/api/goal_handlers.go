package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/service"
)

func GetGoals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		goals, err := service.ListGoals(c.Request.Context(), app.GoalRepo(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch goals")
			return
		}
		HandleSuccess(c, app.Logger(), goals, map[string]any{"count": len(goals)})
	}
}

func PostGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.GoalRequest
		if !bindJSON(c, app, &req) {
			return
		}
		goal, err := service.CreateCustomGoal(c.Request.Context(), app.GoalRepo(), userID(c), &req, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to save goal")
			return
		}
		HandleCreated(c, app.Logger(), goal)
	}
}

func PatchGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.GoalUpdateRequest
		if !bindJSON(c, app, &req) {
			return
		}
		goal, err := service.UpdateGoal(c.Request.Context(), app.GoalRepo(), userID(c), c.Param("id"), &req, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update goal")
			return
		}
		HandleSuccess(c, app.Logger(), goal, nil)
	}
}

func DeleteGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.DeleteGoal(c.Request.Context(), app.GoalRepo(), userID(c), c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete goal")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
