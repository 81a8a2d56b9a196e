package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/auth"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/config"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

// 2024-06-12 is a Wednesday.
var testNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.Local)

type testApp struct {
	cfg    *config.Config
	store  storage.Store
	tokens *auth.TokenManager
}

func (a *testApp) Logger() internal.Logger                 { return internal.NopLogger() }
func (a *testApp) Config() *config.Config                  { return a.cfg }
func (a *testApp) UserRepo() storage.UserRepository        { return a.store }
func (a *testApp) GoalRepo() storage.GoalRepository        { return a.store }
func (a *testApp) WaterRepo() storage.WaterLogRepository   { return a.store }
func (a *testApp) SleepRepo() storage.SleepEntryRepository { return a.store }
func (a *testApp) Tokens() *auth.TokenManager              { return a.tokens }
func (a *testApp) AuthProvider() auth.Provider {
	return auth.NewLocalAuthProvider(a.tokens, internal.NopLogger())
}
func (a *testApp) Now() time.Time { return testNow }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.NewFileRepositories(t.TempDir(), internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		Env:            "test",
		RequestTimeout: 5 * time.Second,
		WeekStartName:  "sunday",
	}
	app := &testApp{
		cfg:    cfg,
		store:  store,
		tokens: auth.NewTokenManager("0123456789abcdef0123456789abcdef", "hydrosleep", time.Hour).WithClock(func() time.Time { return testNow }),
	}
	return NewRouter(app)
}

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func register(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ada", "email": email, "password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestHealthAndRequestID(t *testing.T) {
	r := setupRouter(t)
	w, _ := do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	r := setupRouter(t)
	register(t, r, "ada@example.com")

	w, env := do(t, r, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret-pass",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)

	w, _ = do(t, r, http.MethodPost, "/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodPost, "/auth/login", "", map[string]string{"email": "ada@example.com", "password": "secret-pass"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodPost, "/auth/register", "", map[string]string{"name": "Bob", "email": "bob", "password": "secret-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "email", env.Error.Field)

	w, _ = do(t, r, http.MethodGet, "/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMalformedJSONBody(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/water", bytes.NewBufferString(`{"amount_ml": `))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusBadRequest, env.Error.Code)
	assert.Equal(t, "invalid JSON body", env.Error.Message)
	assert.Empty(t, env.Error.Field)
}

func TestWaterEndpoints(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "ada@example.com")

	w, _ := do(t, r, http.MethodPost, "/water", token, map[string]any{"amount_ml": 250})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env := do(t, r, http.MethodPost, "/water", token, map[string]any{"amount_ml": 500, "day": "2024-06-12"})
	require.Equal(t, http.StatusOK, w.Code)
	var log internal.WaterLog
	require.NoError(t, json.Unmarshal(env.Data, &log))
	assert.Equal(t, 750, log.AmountML)

	w, env = do(t, r, http.MethodGet, "/water/today", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &log))
	assert.Equal(t, 750, log.AmountML)

	w, env = do(t, r, http.MethodGet, "/water?from=2024-06-01&to=2024-06-12", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []internal.WaterLog
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	assert.Len(t, logs, 1)

	w, env = do(t, r, http.MethodPost, "/water", token, map[string]any{"amount_ml": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount_ml", env.Error.Field)

	w, _ = do(t, r, http.MethodPost, "/water", token, map[string]any{"day": "2024-06-12"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/water?from=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWeeklyAndSummary(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "ada@example.com")

	for _, d := range []string{"2024-06-09", "2024-06-10", "2024-06-11"} {
		w, _ := do(t, r, http.MethodPost, "/water", token, map[string]any{"amount_ml": 3000, "day": d})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, _ := do(t, r, http.MethodPost, "/water", token, map[string]any{"amount_ml": 1000, "day": "2024-06-12"})
	require.Equal(t, http.StatusOK, w.Code)
	for d, minutes := range map[string]int{"2024-06-10": 420, "2024-06-11": 480} {
		w, _ := do(t, r, http.MethodPost, "/sleep", token, map[string]any{
			"day": d, "duration_minutes": minutes, "rested_percent": 80, "rem_percent": 20, "deep_sleep_percent": 15,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w, env := do(t, r, http.MethodGet, "/water/weekly", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		WeekStart     string `json:"week_start"`
		MetCount      int    `json:"met_count"`
		EligibleDays  int    `json:"eligible_days"`
		WeeklyGoalMet bool   `json:"weekly_goal_met"`
		Days          []struct {
			Date    string `json:"date"`
			GoalMet bool   `json:"goal_met"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "2024-06-09", report.WeekStart)
	assert.Equal(t, 3, report.MetCount)
	assert.Equal(t, 4, report.EligibleDays)
	assert.False(t, report.WeeklyGoalMet)
	assert.Len(t, report.Days, 7)

	w, env = do(t, r, http.MethodGet, "/sleep/weekly?week_start=2024-06-02", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 0, report.MetCount)
	assert.Equal(t, 7, report.EligibleDays)

	w, env = do(t, r, http.MethodGet, "/analytics/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Sleep struct {
			Average float64 `json:"average"`
		} `json:"sleep"`
		Water struct {
			Liters          []float64 `json:"liters"`
			DailyGoalLiters float64   `json:"daily_goal_liters"`
		} `json:"water"`
		Goals struct {
			TotalGoals int `json:"total_goals"`
			Rate       int `json:"weekly_completion_rate_percent"`
		} `json:"goals"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 7.5, summary.Sleep.Average)
	assert.Equal(t, []float64{3, 3, 3, 1}, summary.Water.Liters)
	assert.Equal(t, 3.0, summary.Water.DailyGoalLiters)
	assert.Equal(t, 3, summary.Goals.TotalGoals)
	assert.Equal(t, 50, summary.Goals.Rate)

	w, _ = do(t, r, http.MethodGet, "/analytics/summary?range_days=40", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodGet, "/analytics/summary?range_days=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoalEndpoints(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "ada@example.com")
	other := register(t, r, "bob@example.com")

	w, env := do(t, r, http.MethodGet, "/goals", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var goals []internal.Goal
	require.NoError(t, json.Unmarshal(env.Data, &goals))
	require.Len(t, goals, 3)
	water := goals[1]

	w, env = do(t, r, http.MethodDelete, "/goals/"+water.ID, token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "cannot delete a default goal", env.Error.Message)

	w, _ = do(t, r, http.MethodPatch, "/goals/"+water.ID, other, map[string]any{"value": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, http.MethodPatch, "/goals/"+water.ID, token, map[string]any{"value": 2})
	require.Equal(t, http.StatusOK, w.Code)
	var g internal.Goal
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.Equal(t, 2.0, g.Value)

	w, env = do(t, r, http.MethodPost, "/goals", token, map[string]any{"label": "Read", "value": 20, "unit": "pages"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.Equal(t, internal.GoalCustom, g.Type)

	w, _ = do(t, r, http.MethodDelete, "/goals/"+g.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/goals/"+g.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "ada@example.com")

	w, env := do(t, r, http.MethodPatch, "/users/me", token, map[string]any{"name": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, w.Code)
	var u internal.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "Ada Lovelace", u.Name)
	assert.NotContains(t, w.Body.String(), "password")

	w, env = do(t, r, http.MethodPost, "/users/me/password", token, map[string]any{"current_password": "nope", "new_password": "another-pass"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "current password incorrect", env.Error.Message)

	w, _ = do(t, r, http.MethodPost, "/users/me/password", token, map[string]any{"current_password": "secret-pass", "new_password": "another-pass"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = do(t, r, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimitMiddleware(1, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
