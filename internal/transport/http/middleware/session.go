package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	appCtx "github.com/tixflow/listing-service/internal/pkg/context"
)

const (
	HeaderXSessionID  = "X-Session-Id"
	SessionCookieName = "tixflow_session"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

type SessionOptions struct {
	Secure bool
	MaxAge time.Duration
}

// Session resolves the browser session every draft is keyed by. The header
// wins over the cookie; a browser that sends neither gets a fresh cookie.
func Session(opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get(HeaderXSessionID)
			if sid == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil {
					sid = c.Value
				}
			}
			if !sessionIDPattern.MatchString(sid) {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(opts.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(HeaderXSessionID, sid)

			next.ServeHTTP(w, r.WithContext(appCtx.WithSessionID(r.Context(), sid)))
		})
	}
}

func SessionID(r *http.Request) string {
	return appCtx.GetSessionID(r.Context())
}
