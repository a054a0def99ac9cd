package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/infrastructure/gateway"
	"github.com/tixflow/listing-service/internal/logger"
	appCtx "github.com/tixflow/listing-service/internal/pkg/context"
)

// Envelope is the success envelope:
// {"data": ...}
type Envelope struct {
	Data any `json:"data"`
}

// {"error":{"code":"...","message":"...","request_id":"...","details":[...]}}
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	RequestID string   `json:"request_id,omitempty"`
	Details   []string `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Data(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, Envelope{Data: payload})
}

func Fail(w http.ResponseWriter, status int, code, message string, details []string, requestID string) {
	JSON(w, status, ErrorBody{
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	})
}

// Err converts err to the error envelope. Only AppError messages reach the
// client; everything else is logged and reported as internal.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	requestID := appCtx.GetRequestID(r.Context())
	log := logger.Ctx(r.Context())

	var ae *domain.AppError
	if err == nil || !errors.As(err, &ae) {
		log.Error().Err(err).Msg("unhandled error")
		Fail(w, http.StatusInternalServerError, "internal_error", domain.MsgInternal, nil, requestID)
		return
	}

	if ae.Code == domain.CodeGateway {
		status, code, message := fromGateway(ae)
		if status >= 500 {
			log.Warn().Err(ae.Err).Int("status", status).Msg("remote call failed")
		}
		Fail(w, status, code, message, nil, requestID)
		return
	}

	if ae.Err != nil {
		log.Warn().Err(ae.Err).Str("code", string(ae.Code)).Msg("request failed")
	}
	Fail(w, statusFromCode(ae.Code), string(ae.Code), ae.Message, ae.Details, requestID)
}

func statusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized, domain.CodeSessionEnded:
		return http.StatusUnauthorized
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidState, domain.CodeTransitionInFlight:
		return http.StatusConflict
	case domain.CodeUploadFailed, domain.CodeGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fromGateway maps a failed remote call. A remote 401 means the user's
// token is no longer valid.
func fromGateway(ae *domain.AppError) (int, string, string) {
	switch {
	case errors.Is(ae.Err, gateway.ErrUnauthorized):
		return http.StatusUnauthorized, string(domain.CodeUnauthorized), domain.MsgLoginRequired
	case errors.Is(ae.Err, gateway.ErrNotFound):
		return http.StatusNotFound, string(domain.CodeNotFound), ae.Message
	case errors.Is(ae.Err, gateway.ErrTimeout):
		return http.StatusGatewayTimeout, string(domain.CodeGateway), domain.MsgGatewayTimeout
	case errors.Is(ae.Err, gateway.ErrUnavailable):
		return http.StatusServiceUnavailable, string(domain.CodeGateway), domain.MsgGatewayUnavailable
	}
	var se *gateway.StatusError
	if errors.As(ae.Err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
		return se.StatusCode, string(domain.CodeGateway), ae.Message
	}
	return http.StatusBadGateway, string(domain.CodeGateway), ae.Message
}
