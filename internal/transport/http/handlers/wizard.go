package handlers

import (
	"net/http"

	"github.com/tixflow/listing-service/internal/application/wizard"
	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/transport/http/middleware"
	"github.com/tixflow/listing-service/internal/transport/http/response"
)

type WizardHandler struct {
	svc *wizard.Service
}

func NewWizardHandler(svc *wizard.Service) *WizardHandler {
	return &WizardHandler{svc: svc}
}

type selectEventReq struct {
	EventID string `json:"event_id" validate:"required"`
}

// Resume returns the persisted wizard so a reload continues where it was.
func (h *WizardHandler) Resume(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.Resume(r.Context(), sid)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, v)
}

func (h *WizardHandler) EditEventDraft(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var p domain.EventDraftPatch
	if err := decodeJSON(w, r, &p); err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.EditEventDraft(r.Context(), sid, p)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, v)
}

func (h *WizardHandler) EditTicketDraft(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var p domain.TicketDraftPatch
	if err := decodeJSON(w, r, &p); err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.EditTicketDraft(r.Context(), sid, p)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, v)
}

func (h *WizardHandler) SelectEvent(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req selectEventReq
	if err := decodeJSON(w, r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.SelectEvent(r.Context(), sid, req.EventID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, v)
}

func (h *WizardHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.CreateEvent(r.Context(), sid, middleware.BearerToken(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, v)
}

func (h *WizardHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.CreateTicket(r.Context(), sid, middleware.BearerToken(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, v)
}

func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.Back(r.Context(), sid)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, v)
}

// RequestPayment opens the order for the listing fee and returns the link
// the payment frame loads.
func (h *WizardHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	ps, err := h.svc.RequestPayment(r.Context(), sid, middleware.BearerToken(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, ps)
}
