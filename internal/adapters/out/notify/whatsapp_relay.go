// Package notify delivers customer status notifications through an external
// messaging relay.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// messageTemplates maps a status to the customer-facing message body. Statuses
// without a template are internal transitions the customer does not need to
// hear about.
var messageTemplates = map[order.Status]string{
	order.Processing:     "Your order %s is being prepared for shipping.",
	order.Shipped:        "Your order %s has shipped via %s. Track it with AWB %s.",
	order.OutForDelivery: "Your order %s is out for delivery today.",
	order.Delivered:      "Your order %s has been delivered. Thank you!",
	order.Cancelled:      "Your order %s has been cancelled.",
	order.Returned:       "Your order %s is being returned.",
}

type relayMessage struct {
	Phone string `json:"phone"`
	Body  string `json:"body"`
}

// WhatsAppRelay posts status messages to a WhatsApp gateway. Delivery is
// best effort: failures are logged and dropped, never propagated, so a relay
// outage cannot block order processing.
type WhatsAppRelay struct {
	relayURL   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWhatsAppRelay creates a notification sink for the given gateway URL.
func NewWhatsAppRelay(relayURL string, logger *slog.Logger) *WhatsAppRelay {
	return &WhatsAppRelay{
		relayURL: relayURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With(slog.String("component", "whatsapp_relay")),
	}
}

// NotifyStatusChange sends one status message. Statuses without a template
// are silently skipped.
func (r *WhatsAppRelay) NotifyStatusChange(ctx context.Context, n ports.StatusNotification) {
	template, ok := messageTemplates[n.NewStatus]
	if !ok {
		return
	}
	if n.CustomerPhone == "" {
		r.logger.Warn("notification skipped, order has no phone number",
			slog.String("order_id", n.OrderID))
		return
	}

	body := buildBody(template, n)
	if err := r.post(ctx, relayMessage{Phone: n.CustomerPhone, Body: body}); err != nil {
		r.logger.Warn("notification delivery failed",
			slog.String("order_id", n.OrderID),
			slog.String("status", n.NewStatus.String()),
			slog.Any("error", err))
		return
	}

	r.logger.Info("notification sent",
		slog.String("order_id", n.OrderID),
		slog.String("status", n.NewStatus.String()))
}

func buildBody(template string, n ports.StatusNotification) string {
	switch n.NewStatus {
	case order.Shipped:
		return fmt.Sprintf(template, n.OrderID, n.CourierName, n.AWBCode)
	default:
		return fmt.Sprintf(template, n.OrderID)
	}
}

func (r *WhatsAppRelay) post(ctx context.Context, msg relayMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.relayURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("relay returned %d: %s", resp.StatusCode, detail)
	}

	return nil
}

var _ ports.NotificationSink = (*WhatsAppRelay)(nil)
