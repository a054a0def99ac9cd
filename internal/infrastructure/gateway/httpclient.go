// Package gateway talks to the remote Tixflow REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/metrics"
	appCtx "github.com/tixflow/listing-service/internal/pkg/context"
)

var (
	ErrTimeout      = errors.New("gateway_timeout")
	ErrUnavailable  = errors.New("gateway_unavailable")
	ErrNotFound     = errors.New("resource_not_found")
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is a non-2xx answer from the remote API.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is lets errors.Is match 401 and 404 answers against the sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// remote API errors come either as {"error":{"code","message"}} or as
// {"message": "..."}
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func decodeError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode, Code: "remote_error"}
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		if body.Error.Code != "" {
			se.Code = body.Error.Code
		}
		se.Message = body.Error.Message
		if se.Message == "" {
			se.Message = body.Message
		}
	}
	if se.Message == "" {
		se.Message = fmt.Sprintf("unexpected status: %d", resp.StatusCode)
	}
	return se
}

// Client is the single HTTP wrapper every remote call goes through. It
// forwards the request id and bearer token, bounds each call with the
// configured timeout and maps transport failures to ErrTimeout or
// ErrUnavailable. It never retries.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// call sends in as JSON (when non-nil) and decodes the data envelope into
// out (when non-nil). endpoint is the path template used as metric label.
func (c *Client) call(ctx context.Context, method, endpoint, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}
	if auth := bearer(token); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	log := logger.Ctx(ctx).With().Str("method", method).Str("endpoint", endpoint).Logger()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		mapped := mapTransportError(err)
		metrics.RecordGatewayRequest(method, endpoint, mapped.Error(), time.Since(start))
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("remote_request_failed")
		return mapped
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordGatewayRequest(method, endpoint, fmt.Sprintf("status_%d", resp.StatusCode), time.Since(start))
		se := decodeError(resp)
		log.Warn().Int("status", resp.StatusCode).Err(se).Dur("duration", time.Since(start)).Msg("remote_request_rejected")
		return se
	}
	metrics.RecordGatewayRequest(method, endpoint, "ok", time.Since(start))
	log.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("remote_request_completed")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return ErrTimeout
	}
	return ErrUnavailable
}

// bearer normalizes a token to an Authorization header value.
func bearer(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		return "Bearer " + strings.TrimSpace(token[7:])
	}
	return "Bearer " + token
}
