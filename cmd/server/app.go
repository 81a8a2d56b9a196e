package main

import (
	"time"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/auth"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/config"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

// application is the concrete api.App built from configuration.
type application struct {
	cfg      *config.Config
	logger   internal.Logger
	store    storage.Store
	tokens   *auth.TokenManager
	provider auth.Provider
}

func newApplication(cfg *config.Config, logger internal.Logger, store storage.Store) *application {
	tokens := auth.NewTokenManager(cfg.Secret(), cfg.JWTIssuer, cfg.JWTTTL)
	return &application{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		tokens:   tokens,
		provider: auth.NewProvider(cfg, tokens, logger),
	}
}

func (a *application) Logger() internal.Logger                 { return a.logger }
func (a *application) Config() *config.Config                  { return a.cfg }
func (a *application) UserRepo() storage.UserRepository        { return a.store }
func (a *application) GoalRepo() storage.GoalRepository        { return a.store }
func (a *application) WaterRepo() storage.WaterLogRepository   { return a.store }
func (a *application) SleepRepo() storage.SleepEntryRepository { return a.store }
func (a *application) Tokens() *auth.TokenManager              { return a.tokens }
func (a *application) AuthProvider() auth.Provider             { return a.provider }
func (a *application) Now() time.Time                          { return time.Now() }
