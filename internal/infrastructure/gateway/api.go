package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tixflow/listing-service/internal/domain"
)

// ListEvents returns every event the remote API knows about.
func (c *Client) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var env dataEnvelope[[]domain.Event]
	if err := c.call(ctx, http.MethodGet, "/events", "/events", "", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []domain.Event{}
	}
	return env.Data, nil
}

func (c *Client) CreateEvent(ctx context.Context, token string, in domain.CreateEventInput) (*domain.Event, error) {
	var env dataEnvelope[domain.Event]
	if err := c.call(ctx, http.MethodPost, "/events", "/events", token, in, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) CreateTicket(ctx context.Context, token string, in domain.CreateTicketInput) (*domain.Ticket, error) {
	var env dataEnvelope[domain.Ticket]
	if err := c.call(ctx, http.MethodPost, "/tickets", "/tickets", token, in, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) GetTicket(ctx context.Context, token, id string) (*domain.Ticket, error) {
	var env dataEnvelope[domain.Ticket]
	path := "/tickets/" + url.PathEscape(id)
	if err := c.call(ctx, http.MethodGet, "/tickets/{id}", path, token, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) ListTicketsByEvent(ctx context.Context, token, eventID string) ([]domain.Ticket, error) {
	var env dataEnvelope[[]domain.Ticket]
	path := "/tickets/event/" + url.PathEscape(eventID)
	if err := c.call(ctx, http.MethodGet, "/tickets/event/{id}", path, token, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []domain.Ticket{}
	}
	return env.Data, nil
}

func (c *Client) UpdateTicketStatus(ctx context.Context, token, id, status string) (*domain.Ticket, error) {
	var env dataEnvelope[domain.Ticket]
	path := "/tickets/" + url.PathEscape(id) + "/status/" + url.PathEscape(status)
	if err := c.call(ctx, http.MethodPatch, "/tickets/{id}/status/{status}", path, token, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, in domain.CreateOrderInput) (*domain.Order, error) {
	var env dataEnvelope[domain.Order]
	if err := c.call(ctx, http.MethodPost, "/orders", "/orders", token, in, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthTokens, error) {
	var env dataEnvelope[domain.AuthTokens]
	if err := c.call(ctx, http.MethodPost, "/auth/login", "/auth/login", "", creds, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthTokens, error) {
	var env dataEnvelope[domain.AuthTokens]
	if err := c.call(ctx, http.MethodPost, "/auth/register", "/auth/register", "", reg, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var env dataEnvelope[domain.User]
	if err := c.call(ctx, http.MethodGet, "/auth/me", "/auth/me", token, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) GetEvent(ctx context.Context, token, id string) (*domain.Event, error) {
	var env dataEnvelope[domain.Event]
	path := "/events/" + url.PathEscape(id)
	if err := c.call(ctx, http.MethodGet, "/events/{id}", path, token, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateTicket replaces the editable fields of a ticket the caller sells.
func (c *Client) UpdateTicket(ctx context.Context, token, id string, in domain.UpdateTicketInput) (*domain.Ticket, error) {
	var env dataEnvelope[domain.Ticket]
	path := "/tickets/" + url.PathEscape(id)
	if err := c.call(ctx, http.MethodPut, "/tickets/{id}", path, token, in, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListSellingTickets returns the tickets the caller listed.
func (c *Client) ListSellingTickets(ctx context.Context, token string) ([]domain.Ticket, error) {
	return c.listSelf(ctx, token, "/self/selling-tickets")
}

// ListBuyingTickets returns the tickets the caller bought.
func (c *Client) ListBuyingTickets(ctx context.Context, token string) ([]domain.Ticket, error) {
	return c.listSelf(ctx, token, "/self/buying-tickets")
}

func (c *Client) listSelf(ctx context.Context, token, path string) ([]domain.Ticket, error) {
	var env dataEnvelope[[]domain.Ticket]
	if err := c.call(ctx, http.MethodGet, path, path, token, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []domain.Ticket{}
	}
	return env.Data, nil
}
