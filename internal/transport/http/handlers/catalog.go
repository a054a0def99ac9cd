package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/infrastructure/gateway"
	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/transport/http/middleware"
	"github.com/tixflow/listing-service/internal/transport/http/response"
)

// EventLister is the (cached) source of selectable events.
type EventLister interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// CatalogAPI is the remote side of browsing, selling and buying tickets.
type CatalogAPI interface {
	GetEvent(ctx context.Context, token, id string) (*domain.Event, error)
	GetTicket(ctx context.Context, token, id string) (*domain.Ticket, error)
	ListTicketsByEvent(ctx context.Context, token, eventID string) ([]domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, token, id, status string) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, token, id string, in domain.UpdateTicketInput) (*domain.Ticket, error)
	ListSellingTickets(ctx context.Context, token string) ([]domain.Ticket, error)
	ListBuyingTickets(ctx context.Context, token string) ([]domain.Ticket, error)
	CreateOrder(ctx context.Context, token string, in domain.CreateOrderInput) (*domain.Order, error)
}

type CatalogHandler struct {
	events EventLister
	api    CatalogAPI
}

func NewCatalogHandler(events EventLister, api CatalogAPI) *CatalogHandler {
	return &CatalogHandler{events: events, api: api}
}

type updateTicketReq struct {
	Name        string `json:"name" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       int64  `json:"price" validate:"gt=0"`
	Quantity    int    `json:"quantity" validate:"min=1"`
	MinInOrder  int    `json:"minInOrder" validate:"min=1"`
	MaxInOrder  int    `json:"maxInOrder" validate:"gtefield=MinInOrder"`
}

type buyTicketReq struct {
	Quantity int `json:"quantity" validate:"omitempty,min=1"`
}

func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	items, err := h.events.ListEvents(r.Context())
	if err != nil {
		response.Err(w, r, domain.ErrGateway(domain.MsgLoadEventsFailed, err))
		return
	}
	if items == nil {
		items = []domain.Event{}
	}
	response.Data(w, http.StatusOK, items)
}

func (h *CatalogHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.api.GetEvent(r.Context(), middleware.BearerToken(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			response.Err(w, r, domain.ErrNotFound(domain.MsgEventNotFound))
			return
		}
		response.Err(w, r, domain.ErrGateway(domain.MsgLoadEventFailed, err))
		return
	}
	response.Data(w, http.StatusOK, ev)
}

func (h *CatalogHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	t, err := h.api.GetTicket(r.Context(), middleware.BearerToken(r), chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, r, ticketErr(err, domain.MsgLoadTicketFailed))
		return
	}
	response.Data(w, http.StatusOK, t)
}

func (h *CatalogHandler) ListTicketsByEvent(w http.ResponseWriter, r *http.Request) {
	items, err := h.api.ListTicketsByEvent(r.Context(), middleware.BearerToken(r), chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, r, domain.ErrGateway(domain.MsgLoadTicketFailed, err))
		return
	}
	response.Data(w, http.StatusOK, nonNil(items))
}

func (h *CatalogHandler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	if !domain.ValidTicketStatus(status) {
		response.Err(w, r, domain.ErrValidation(domain.MsgTicketStatusInvalid))
		return
	}
	t, err := h.api.UpdateTicketStatus(r.Context(), middleware.BearerToken(r), chi.URLParam(r, "id"), status)
	if err != nil {
		response.Err(w, r, ticketErr(err, domain.MsgUpdateTicketFailed))
		return
	}
	response.Data(w, http.StatusOK, t)
}

// UpdateTicket edits a ticket the caller is selling. Whether it may still be
// edited is up to the remote API.
func (h *CatalogHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	var req updateTicketReq
	if err := decodeJSON(w, r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	t, err := h.api.UpdateTicket(r.Context(), middleware.BearerToken(r), chi.URLParam(r, "id"), domain.UpdateTicketInput{
		Name:        strings.TrimSpace(req.Name),
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		MinInOrder:  req.MinInOrder,
		MaxInOrder:  req.MaxInOrder,
	})
	if err != nil {
		response.Err(w, r, ticketErr(err, domain.MsgEditTicketFailed))
		return
	}
	response.Data(w, http.StatusOK, t)
}

func (h *CatalogHandler) ListSellingTickets(w http.ResponseWriter, r *http.Request) {
	items, err := h.api.ListSellingTickets(r.Context(), middleware.BearerToken(r))
	if err != nil {
		response.Err(w, r, domain.ErrGateway(domain.MsgLoadMyTicketsFailed, err))
		return
	}
	response.Data(w, http.StatusOK, nonNil(items))
}

func (h *CatalogHandler) ListBuyingTickets(w http.ResponseWriter, r *http.Request) {
	items, err := h.api.ListBuyingTickets(r.Context(), middleware.BearerToken(r))
	if err != nil {
		response.Err(w, r, domain.ErrGateway(domain.MsgLoadMyTicketsFailed, err))
		return
	}
	response.Data(w, http.StatusOK, nonNil(items))
}

// BuyTicket opens a purchase order for an approved ticket. The price comes
// from the remote ticket, never from the browser.
func (h *CatalogHandler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	var req buyTicketReq
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			response.Err(w, r, err)
			return
		}
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	ctx := r.Context()
	token := middleware.BearerToken(r)
	t, err := h.api.GetTicket(ctx, token, chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, r, ticketErr(err, domain.MsgLoadTicketFailed))
		return
	}
	if t.Status != domain.TicketApproved {
		response.Err(w, r, domain.ErrInvalidState(domain.MsgTicketNotForSale))
		return
	}
	if (t.MinInOrder > 0 && qty < t.MinInOrder) || (t.MaxInOrder > 0 && qty > t.MaxInOrder) || (t.Quantity > 0 && qty > t.Quantity) {
		response.Err(w, r, domain.ErrValidation(domain.MsgQuantityOutOfRange))
		return
	}

	total := t.Price * int64(qty)
	order, err := h.api.CreateOrder(ctx, token, domain.CreateOrderInput{
		TicketID: t.ID,
		Type:     domain.OrderTypeBuyTicket,
		Price:    total,
		Quantity: qty,
	})
	if err != nil {
		response.Err(w, r, domain.ErrGateway(domain.MsgCreateOrderFailed, err))
		return
	}
	if order.PaymentURL == "" {
		logger.Ctx(ctx).Warn().Str("order_id", order.ID).Msg("buy_order_without_payment_link")
		response.Err(w, r, domain.ErrGateway(domain.MsgNoPaymentLink, nil))
		return
	}

	logger.Ctx(ctx).Info().Str("ticket_id", t.ID).Str("order_id", order.ID).Int("quantity", qty).Msg("ticket_order_created")
	response.Data(w, http.StatusCreated, domain.Purchase{
		OrderID:    order.ID,
		TicketID:   t.ID,
		Quantity:   qty,
		Total:      total,
		PaymentURL: order.PaymentURL,
	})
}

func ticketErr(err error, msg string) error {
	if errors.Is(err, gateway.ErrNotFound) {
		return domain.ErrNotFound(domain.MsgTicketNotFound)
	}
	return domain.ErrGateway(msg, err)
}

func nonNil(items []domain.Ticket) []domain.Ticket {
	if items == nil {
		return []domain.Ticket{}
	}
	return items
}
