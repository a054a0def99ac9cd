package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/infrastructure/gateway"
	"github.com/tixflow/listing-service/internal/transport/http/middleware"
	"github.com/tixflow/listing-service/internal/transport/http/response"
)

type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthTokens, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthTokens, error)
	Me(ctx context.Context, token string) (*domain.User, error)
}

// SessionKeeper starts and ends the wizard session of a browser.
type SessionKeeper interface {
	BeginSession(ctx context.Context, sid string)
	EndSession(ctx context.Context, sid string)
}

type AuthHandler struct {
	api      AuthAPI
	sessions SessionKeeper
}

func NewAuthHandler(api AuthAPI, sessions SessionKeeper) *AuthHandler {
	return &AuthHandler{api: api, sessions: sessions}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"omitempty,e164|numeric"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	tokens, err := h.api.Login(r.Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		response.Err(w, r, authErr(err, domain.MsgLoginFailed))
		return
	}
	h.sessions.BeginSession(r.Context(), sid)
	response.Data(w, http.StatusOK, tokens)
}

// Register signs a new account up. When the remote API signs the user in
// right away the wizard session starts too.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req registerReq
	if err := decodeJSON(w, r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	tokens, err := h.api.Register(r.Context(), domain.Registration{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Err(w, r, domain.ErrGateway(domain.MsgRegisterFailed, err))
		return
	}
	if tokens.AccessToken != "" {
		h.sessions.BeginSession(r.Context(), sid)
	}
	response.Data(w, http.StatusCreated, tokens)
}

// Logout ends the wizard session: every draft of this browser is purged.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	h.sessions.EndSession(r.Context(), sid)
	response.Data(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.api.Me(r.Context(), middleware.BearerToken(r))
	if err != nil {
		response.Err(w, r, domain.ErrGateway(domain.MsgLoadProfileFailed, err))
		return
	}
	response.Data(w, http.StatusOK, u)
}

// bad credentials answer 401 remotely; that is not a lost session here
func authErr(err error, msg string) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return domain.ErrUnauthorized(msg)
	}
	return domain.ErrGateway(msg, err)
}
