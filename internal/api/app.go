package api

import (
	"time"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/auth"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/config"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Config() *config.Config
	UserRepo() storage.UserRepository
	GoalRepo() storage.GoalRepository
	WaterRepo() storage.WaterLogRepository
	SleepRepo() storage.SleepEntryRepository
	Tokens() *auth.TokenManager
	AuthProvider() auth.Provider
	// Now is the clock every handler reads "today" from.
	Now() time.Time
}

// analyticsStores joins the repositories the aggregator reads.
type analyticsStores struct {
	storage.GoalRepository
	storage.WaterLogRepository
	storage.SleepEntryRepository
}

func storesOf(app App) analyticsStores {
	return analyticsStores{app.GoalRepo(), app.WaterRepo(), app.SleepRepo()}
}
