package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/auth"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/service"
)

func NewRouter(app App) *gin.Engine {
	cfg := app.Config()
	if cfg.Env == "production" || cfg.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(app.Logger()), TimeoutMiddleware(cfg.RequestTimeout))

	r.GET("/health", Health(app))

	public := r.Group("/auth", RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	public.POST("/register", Register(app))
	public.POST("/login", Login(app))

	protected := r.Group("/", auth.AuthMiddleware(app.AuthProvider()), RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	protected.GET("/analytics/summary", GetSummary(app))

	protected.POST("/water", PostWater(app))
	protected.GET("/water", GetWater(app))
	protected.GET("/water/today", GetWaterToday(app))
	protected.GET("/water/weekly", GetWeekly(app, service.MetricWater))

	protected.POST("/sleep", PostSleep(app))
	protected.GET("/sleep", GetSleep(app))
	protected.GET("/sleep/weekly", GetWeekly(app, service.MetricSleep))

	protected.GET("/goals", GetGoals(app))
	protected.POST("/goals", PostGoal(app))
	protected.PATCH("/goals/:id", PatchGoal(app))
	protected.DELETE("/goals/:id", DeleteGoal(app))

	protected.GET("/users/me", GetMe(app))
	protected.PATCH("/users/me", PatchMe(app))
	protected.POST("/users/me/password", PostPassword(app))

	return r
}
