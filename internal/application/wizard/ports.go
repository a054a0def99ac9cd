package wizard

import (
	"context"

	"github.com/tixflow/listing-service/internal/domain"
)

// RemoteAPI is the part of the Tixflow API the wizard drives.
type RemoteAPI interface {
	CreateEvent(ctx context.Context, token string, in domain.CreateEventInput) (*domain.Event, error)
	CreateTicket(ctx context.Context, token string, in domain.CreateTicketInput) (*domain.Ticket, error)
	CreateOrder(ctx context.Context, token string, in domain.CreateOrderInput) (*domain.Order, error)
}

// EventsInvalidator is told when a new event makes cached event lists stale.
type EventsInvalidator interface {
	Invalidate(ctx context.Context)
}

// View is what the browser renders: the state plus both drafts.
type View struct {
	State       domain.WizardState `json:"state"`
	EventDraft  domain.EventDraft  `json:"event_draft"`
	TicketDraft domain.TicketDraft `json:"ticket_draft"`
	Fee         int64              `json:"fee,omitempty"`
}
