package dto

import (
	"studio-storefront/internal/model"
	"studio-storefront/internal/notifier"
)

// NotificationRequest names the paid checkout session to notify about.
// Any order data posted alongside it is ignored.
type NotificationRequest struct {
	SessionID string `json:"sessionId"`
}

type NotificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OrderResponse is the confirmation page view of a paid order.
type OrderResponse struct {
	*model.DecodedOrder
	FormattedTotal string `json:"formattedTotal"`
}

func NewOrderResponse(order *model.DecodedOrder) OrderResponse {
	return OrderResponse{
		DecodedOrder:   order,
		FormattedTotal: notifier.FormatAmount(order.TotalAmount, order.Currency),
	}
}
