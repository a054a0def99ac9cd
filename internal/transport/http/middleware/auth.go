package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tixflow/listing-service/internal/domain"
	appCtx "github.com/tixflow/listing-service/internal/pkg/context"
	"github.com/tixflow/listing-service/internal/transport/http/response"
)

// Bearer copies the caller's access token into the context so it can be
// forwarded to the remote API. It never rejects a request.
func Bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerToken(r.Header.Get("Authorization")); tok != "" {
			r = r.WithContext(appCtx.WithBearerToken(r.Context(), tok))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireBearer rejects requests without a token and requests whose JWT is
// already expired. Signatures are checked by the remote API, not here.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := appCtx.GetBearerToken(r.Context())
		if tok == "" {
			tok = bearerToken(r.Header.Get("Authorization"))
		}
		if tok == "" || expired(tok) {
			response.Err(w, r, domain.ErrUnauthorized(domain.MsgLoginRequired))
			return
		}
		next.ServeHTTP(w, r.WithContext(appCtx.WithBearerToken(r.Context(), tok)))
	})
}

func BearerToken(r *http.Request) string {
	return appCtx.GetBearerToken(r.Context())
}

func bearerToken(h string) string {
	h = strings.TrimSpace(h)
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// expired is true only for a well-formed JWT whose exp has passed. Opaque
// tokens are left to the remote API.
func expired(tok string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}
