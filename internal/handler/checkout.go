package handler

import (
	"errors"
	"io"
	"net/http"

	"studio-storefront/internal/client"
	"studio-storefront/internal/codec"
	"studio-storefront/internal/dto"
	"studio-storefront/internal/middleware"
	"studio-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.CreateCheckout(ctx, middleware.SessionKey(c), codec.Customer{
		Name:           req.CustomerName,
		Email:          req.CustomerEmail,
		SocialPlatform: req.SocialPlatform,
		SocialUsername: req.SocialUsername,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, &dto.CheckoutResponse{
		SessionID: result.SessionID,
		URL:       result.URL,
		Warnings:  result.Warnings,
	})
}

// GetSession backs the order confirmation page.
func (h *CheckoutHandler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing session_id")
	}

	order, err := h.checkoutService.Confirm(ctx, middleware.SessionKey(c), sessionID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

func (h *CheckoutHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.checkoutService.HandleWebhook(ctx, body, c.Request().Header.Get("Stripe-Signature"))
	if errors.Is(err, client.ErrInvalidSignature) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
	}
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"received": true,
	})
}
