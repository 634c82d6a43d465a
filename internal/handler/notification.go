package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"studio-storefront/internal/client"
	"studio-storefront/internal/dto"
	"studio-storefront/internal/notifier"
	"studio-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type NotificationSender interface {
	SendNotification(ctx context.Context, checkoutSessionID string, kind service.NotificationKind) (notifier.Result, error)
}

type NotificationHandler struct {
	sender NotificationSender
	log    *slog.Logger
}

func NewNotificationHandler(sender NotificationSender, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		sender: sender,
		log:    log,
	}
}

func (h *NotificationHandler) SendOrderNotification(c echo.Context) error {
	return h.send(c, service.NotifyOperator)
}

func (h *NotificationHandler) SendCustomerConfirmation(c echo.Context) error {
	return h.send(c, service.NotifyCustomer)
}

// send answers 200 once the body is understood. The order and the recipient
// come from the paid checkout session, never from the request body.
func (h *NotificationHandler) send(c echo.Context, kind service.NotificationKind) error {
	ctx := c.Request().Context()

	var req dto.NotificationRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	res, err := h.sender.SendNotification(ctx, req.SessionID, kind)
	switch {
	case errors.Is(err, service.ErrAlreadySent):
		return c.JSON(http.StatusOK, &dto.NotificationResponse{Success: true, Message: "email already sent"})
	case errors.Is(err, service.ErrNotPaid), errors.Is(err, client.ErrSessionNotFound):
		h.log.Warn("notification refused", "kind", kind, "session_id", req.SessionID, "error", err)
		return c.JSON(http.StatusOK, &dto.NotificationResponse{Success: false, Message: "no paid order for this session"})
	case err != nil:
		h.log.Error("notification failed", "kind", kind, "session_id", req.SessionID, "error", err)
		return c.JSON(http.StatusOK, &dto.NotificationResponse{Success: false, Message: "email could not be sent"})
	}

	if len(res.Errors) > 0 {
		h.log.Warn("notification not sent", "kind", kind, "session_id", req.SessionID, "errors", res.Errors)
		return c.JSON(http.StatusOK, &dto.NotificationResponse{
			Success: false,
			Message: "email could not be sent",
		})
	}

	msg := "email sent"
	if res.CustomerSkipped {
		msg = "no customer email on order"
	}
	return c.JSON(http.StatusOK, &dto.NotificationResponse{
		Success: res.OperatorSent || res.CustomerSent,
		Message: msg,
	})
}
