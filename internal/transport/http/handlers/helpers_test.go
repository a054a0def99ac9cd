package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tixflow/listing-service/internal/application/draft"
	"github.com/tixflow/listing-service/internal/application/wizard"
	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/infrastructure/memory"
	appCtx "github.com/tixflow/listing-service/internal/pkg/context"
)

const (
	testSID   = "browser-session-1"
	testToken = "opaque-token"
)

type MockRemoteAPI struct {
	mock.Mock
}

func (m *MockRemoteAPI) CreateEvent(ctx context.Context, token string, in domain.CreateEventInput) (*domain.Event, error) {
	args := m.Called(ctx, token, in)
	if v := args.Get(0); v != nil {
		return v.(*domain.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRemoteAPI) CreateTicket(ctx context.Context, token string, in domain.CreateTicketInput) (*domain.Ticket, error) {
	args := m.Called(ctx, token, in)
	if v := args.Get(0); v != nil {
		return v.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRemoteAPI) CreateOrder(ctx context.Context, token string, in domain.CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, token, in)
	if v := args.Get(0); v != nil {
		return v.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func newWizardService(t *testing.T) (*wizard.Service, *MockRemoteAPI) {
	t.Helper()
	api := new(MockRemoteAPI)
	svc := wizard.NewService(draft.NewStore(memory.NewKV(), time.Hour), api, wizard.Options{
		Keys: domain.DefaultDraftKeys(),
		Fees: wizard.DefaultFeeSchedule(),
	})
	svc.BeginSession(context.Background(), testSID)
	return svc, api
}

// call runs h as if the session and bearer middleware had already run.
func call(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	return callWithHeaders(h, method, target, body, nil)
}

func callWithHeaders(h http.HandlerFunc, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	ctx := appCtx.WithSessionID(req.Context(), testSID)
	ctx = appCtx.WithBearerToken(ctx, testToken)
	rr := httptest.NewRecorder()
	h(rr, req.WithContext(ctx))
	return rr
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

const completeEventDraft = `{
	"name": "Đêm nhạc Trịnh",
	"cover_url": "https://cdn.tixflow.net/images/cover.png",
	"location": "Nhà hát Hòa Bình",
	"category": "live_music",
	"time": "2026-12-24T20:00:00+07:00",
	"introduction": "Giới thiệu",
	"description": "Chi tiết"
}`

const completeTicketDraft = `{
	"name": "Vé VIP",
	"image_url": "https://cdn.tixflow.net/images/ticket.png",
	"description": "Hàng ghế đầu",
	"price": 1500000,
	"quantity": 2,
	"min_in_order": 1,
	"max_in_order": 2
}`
