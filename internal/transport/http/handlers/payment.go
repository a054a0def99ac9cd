package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tixflow/listing-service/internal/application/payment"
	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/transport/http/response"
)

type PaymentHandler struct {
	listener  *payment.Listener
	heartbeat time.Duration
}

func NewPaymentHandler(l *payment.Listener) *PaymentHandler {
	return &PaymentHandler{listener: l, heartbeat: 15 * time.Second}
}

type paymentMessageReq struct {
	Origin string          `json:"origin"`
	Data   json.RawMessage `json:"data" validate:"required"`
}

// Stream keeps the payment view of the session open as a server-sent event
// stream. Payment messages are only applied while a stream is open; the
// stream ends after a successful payment.
func (h *PaymentHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	rc := http.NewResponseController(w)
	// the server write timeout would cut the stream otherwise
	_ = rc.SetWriteDeadline(time.Time{})

	sub := h.listener.Subscribe(sid)
	defer sub.Close()

	log := logger.Ctx(r.Context())
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": listening\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		log.Warn().Err(err).Msg("payment_stream_not_flushable")
		return
	}

	tick := time.NewTicker(h.heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case u, ok := <-sub.Updates():
			if !ok {
				return
			}
			b, err := json.Marshal(u)
			if err != nil {
				log.Error().Err(err).Msg("payment_update_encode_failed")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: payment\ndata: %s\n\n", b); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
			if u.Status == domain.PaymentSuccess {
				return
			}
		}
	}
}

// Relay accepts a message the payment frame posted to the browser. The
// origin is the one the browser saw on the postMessage event; the request's
// own Origin header names the front end, not the frame, so it is never
// used. The answer only tells the browser whether it was applied; a dropped
// message is not an error.
func (h *PaymentHandler) Relay(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req paymentMessageReq
	if err := decodeJSON(w, r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	outcome := h.listener.Deliver(r.Context(), payment.Message{
		Origin:    req.Origin,
		SessionID: sid,
		Data:      req.Data,
	})
	response.Data(w, http.StatusAccepted, map[string]string{"outcome": string(outcome)})
}
