package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/transport/http/middleware"
)

const maxJSONBody = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a single JSON object, rejecting unknown fields, and runs
// struct validation tags on the result.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrValidation(domain.MsgInvalidRequest)
		}
		return &domain.AppError{Code: domain.CodeValidation, Message: domain.MsgInvalidRequest, Err: err}
	}
	if err := validate.Struct(dst); err != nil {
		return &domain.AppError{Code: domain.CodeValidation, Message: domain.MsgInvalidRequest, Err: err}
	}
	return nil
}

// sessionID is the draft namespace of the caller. The session middleware
// always sets one; an empty id means the route was mounted without it.
func sessionID(r *http.Request) (string, error) {
	sid := middleware.SessionID(r)
	if sid == "" {
		return "", domain.ErrInvalidState(domain.MsgInvalidRequest)
	}
	return sid, nil
}
