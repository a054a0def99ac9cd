package context

import "context"

type (
	requestIDKey   struct{}
	sessionIDKey   struct{}
	bearerTokenKey struct{}
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(requestIDKey{}).(string); ok {
		return s
	}
	return ""
}

// WithSessionID stores the browser session the wizard drafts are keyed by.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

func GetSessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return s
	}
	return ""
}

// WithBearerToken keeps the raw Authorization header value so it can be
// forwarded to the remote API untouched.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey{}, token)
}

func GetBearerToken(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(bearerTokenKey{}).(string); ok {
		return s
	}
	return ""
}
