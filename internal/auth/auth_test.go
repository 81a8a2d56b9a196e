package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "hydrosleep", time.Hour)
	token, expires, err := tm.Issue("user-1", "ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestTokenRejections(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager(testSecret, "hydrosleep", time.Hour).WithClock(func() time.Time { return now })
	token, _, err := tm.Issue("user-1", "ada@example.com")
	require.NoError(t, err)

	other := NewTokenManager("another-secret-another-secret-xx", "hydrosleep", time.Hour).WithClock(func() time.Time { return now })
	_, err = other.Validate(token)
	assert.Error(t, err)

	wrongIssuer := NewTokenManager(testSecret, "someone-else", time.Hour).WithClock(func() time.Time { return now })
	_, err = wrongIssuer.Validate(token)
	assert.Error(t, err)

	later := NewTokenManager(testSecret, "hydrosleep", time.Hour).WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	_, err = later.Validate(token)
	assert.Error(t, err)

	_, err = tm.Validate("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestRemoteAuthProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["token"] != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "user-9", "email": "r@example.com"})
	}))
	defer srv.Close()

	p := NewRemoteAuthProvider(srv.URL, internal.NopLogger())
	id, err := p.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "user-9", id.UserID)

	_, err = p.ValidateToken(context.Background(), "bad")
	assert.ErrorIs(t, err, internal.ErrUnauthorized)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := NewTokenManager(testSecret, "hydrosleep", time.Hour)
	r := gin.New()
	r.GET("/me", AuthMiddleware(NewLocalAuthProvider(tm, internal.NopLogger())), func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.UserID)
	})

	token, _, err := tm.Issue("user-1", "ada@example.com")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer garbage", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "user-1", w.Body.String())
			}
		})
	}
}
