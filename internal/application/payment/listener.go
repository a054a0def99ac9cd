// Package payment listens for the payment frame's completion message and
// finishes the wizard accordingly.
package payment

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/metrics"
)

// Message is what the payment frame posted, relayed by the browser.
type Message struct {
	Origin    string
	SessionID string
	Data      json.RawMessage
}

// Completer applies a payment verdict to the session's wizard.
type Completer interface {
	CompletePayment(ctx context.Context, sessionID string, status domain.PaymentStatus) (domain.WizardState, error)
}

// ListingPaid is announced after a successful payment.
type ListingPaid struct {
	SessionID string    `json:"session_id"`
	EventID   string    `json:"event_id"`
	TicketID  string    `json:"ticket_id"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	PaidAt    time.Time `json:"paid_at"`
}

type Publisher interface {
	PublishListingPaid(ctx context.Context, evt ListingPaid) error
}

// Outcome says what became of a message.
type Outcome string

const (
	Applied           Outcome = "applied"
	DroppedOrigin     Outcome = "origin"
	DroppedMalformed  Outcome = "malformed"
	DroppedNoListener Outcome = "no_listener"
	DroppedRejected   Outcome = "rejected"
)

// Listener filters payment messages by origin and applies the accepted ones
// while the session has its payment view open.
type Listener struct {
	allowedOrigin string
	hub           *Hub
	completer     Completer
	publisher     Publisher
}

func NewListener(allowedOrigin string, hub *Hub, completer Completer, publisher Publisher) *Listener {
	return &Listener{
		allowedOrigin: normalizeOrigin(allowedOrigin),
		hub:           hub,
		completer:     completer,
		publisher:     publisher,
	}
}

// Subscribe opens the payment view of sessionID. Messages are only applied
// while at least one subscription is open.
func (l *Listener) Subscribe(sessionID string) *Subscription {
	return l.hub.Subscribe(sessionID)
}

// Deliver handles one relayed message. Dropped messages leave the wizard
// untouched and are only logged and counted.
func (l *Listener) Deliver(ctx context.Context, msg Message) Outcome {
	log := logger.Ctx(ctx)

	if l.allowedOrigin == "" || normalizeOrigin(msg.Origin) != l.allowedOrigin {
		log.Warn().Str("origin", msg.Origin).Msg("payment_message_origin_mismatch")
		metrics.RecordPaymentMessageDropped(string(DroppedOrigin))
		return DroppedOrigin
	}

	status, ok := parseStatus(msg.Data)
	if !ok {
		log.Debug().Msg("payment_message_ignored")
		metrics.RecordPaymentMessageDropped(string(DroppedMalformed))
		return DroppedMalformed
	}

	if !l.hub.Listening(msg.SessionID) {
		log.Info().Str("status", string(status)).Msg("payment_message_without_listener")
		metrics.RecordPaymentMessageDropped(string(DroppedNoListener))
		return DroppedNoListener
	}

	st, err := l.completer.CompletePayment(ctx, msg.SessionID, status)
	if err != nil {
		log.Warn().Err(err).Str("status", string(status)).Msg("payment_message_rejected")
		metrics.RecordPaymentMessageDropped(string(DroppedRejected))
		return DroppedRejected
	}
	metrics.RecordPaymentMessage(string(status))
	log.Info().Str("status", string(status)).Msg("payment_message_applied")

	if status == domain.PaymentSuccess && l.publisher != nil {
		evt := ListingPaid{
			SessionID: msg.SessionID,
			Price:     st.ListedPrice,
			Quantity:  st.ListedQuantity,
			PaidAt:    time.Now().UTC(),
		}
		if st.SelectedEventID != nil {
			evt.EventID = *st.SelectedEventID
		}
		if st.TicketID != nil {
			evt.TicketID = *st.TicketID
		}
		if err := l.publisher.PublishListingPaid(ctx, evt); err != nil {
			log.Warn().Err(err).Msg("listing_paid_publish_failed")
		}
	}

	l.hub.Broadcast(msg.SessionID, Update{Status: status, State: st})
	return Applied
}

// parseStatus accepts {"status":"success"|"failed"}, also when the frame
// posted it as a JSON string.
func parseStatus(data json.RawMessage) (domain.PaymentStatus, bool) {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		data = json.RawMessage(raw)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", false
	}
	switch domain.PaymentStatus(body.Status) {
	case domain.PaymentSuccess:
		return domain.PaymentSuccess, true
	case domain.PaymentFailed:
		return domain.PaymentFailed, true
	}
	return "", false
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
}
