package handler

import (
	"errors"
	"net/http"

	"studio-storefront/internal/cart"
	"studio-storefront/internal/client"
	"studio-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

// toHTTPError maps domain errors onto status codes. Unknown errors pass
// through to echo's default handler as 500s.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrServiceNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, client.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNoFiles),
		errors.Is(err, service.ErrTooManyFiles),
		errors.Is(err, cart.ErrInvalidService),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidSection),
		errors.Is(err, cart.ErrQuantityLimit),
		errors.Is(err, cart.ErrFileLimit):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, client.ErrGatewayUnavailable):
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"message":   "payment provider unavailable, please try again",
			"retryable": true,
		}).SetInternal(err)
	}
	return err
}
