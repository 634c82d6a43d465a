package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie = "cart_session"
	sessionKey    = "session_key"
	issuer        = "studio-storefront"
)

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Session resolves the browsing session from a signed cookie, issuing a new
// one when the cookie is missing, expired or tampered with.
func Session(secret []byte, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, err := parseSession(c, secret)
			if err != nil {
				key = uuid.NewString()
				token, err := SignSession(secret, key, time.Now(), ttl)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "could not start session")
				}
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    token,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   c.IsTLS(),
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(sessionKey, key)
			return next(c)
		}
	}
}

// SessionKey returns the browsing session id set by Session.
func SessionKey(c echo.Context) string {
	key, _ := c.Get(sessionKey).(string)
	return key
}

// SignSession issues the cookie value for a session id.
func SignSession(secret []byte, key string, now time.Time, ttl time.Duration) (string, error) {
	claims := sessionClaims{jwt.RegisteredClaims{
		Subject:   key,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseSession(c echo.Context, secret []byte) (string, error) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return "", err
	}

	claims := &sessionClaims{}
	keyFunc := func(token *jwt.Token) (any, error) {
		return secret, nil
	}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}
	return claims.Subject, nil
}
