package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func serve(t *testing.T, cookie *http.Cookie) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var got string
	e.GET("/", func(c echo.Context) error {
		got = SessionKey(c)
		return c.NoContent(http.StatusOK)
	}, Session(secret, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec, got
}

func issuedCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestSession_IssuesAndReusesCookie(t *testing.T) {
	rec, first := serve(t, nil)
	assert.Len(t, first, 36)

	cookie := issuedCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	rec, second := serve(t, cookie)
	assert.Equal(t, first, second)
	assert.Nil(t, issuedCookie(rec), "a valid session is not reissued")
}

func TestSession_RejectsForeignTokens(t *testing.T) {
	forged, err := SignSession([]byte("other-secret"), "victim", time.Now(), time.Hour)
	require.NoError(t, err)
	expired, err := SignSession(secret, "stale", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	for name, value := range map[string]string{
		"forged":  forged,
		"expired": expired,
		"garbage": "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			rec, key := serve(t, &http.Cookie{Name: SessionCookie, Value: value})
			assert.NotEqual(t, "victim", key)
			assert.NotEqual(t, "stale", key)
			assert.Len(t, key, 36)
			assert.NotNil(t, issuedCookie(rec))
		})
	}
}
