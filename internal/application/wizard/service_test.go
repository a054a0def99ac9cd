package wizard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tixflow/listing-service/internal/application/draft"
	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/infrastructure/memory"
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

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

const sid = "sess-1"

type fixture struct {
	kv     *memory.KV
	store  *draft.Store
	api    *MockRemoteAPI
	events *countingInvalidator
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		kv:     memory.NewKV(),
		api:    new(MockRemoteAPI),
		events: &countingInvalidator{},
	}
	f.store = draft.NewStore(f.kv, time.Hour)
	f.svc = f.newService()
	f.svc.BeginSession(context.Background(), sid)
	return f
}

// newService simulates a restart over the same storage.
func (f *fixture) newService() *Service {
	return NewService(f.store, f.api, Options{
		Keys:     domain.DefaultDraftKeys(),
		Fees:     DefaultFeeSchedule(),
		Autosave: 0,
		Events:   f.events,
	})
}

func (f *fixture) stored(t *testing.T, key string) bool {
	t.Helper()
	ok, err := f.store.Session(sid).Exists(context.Background(), key)
	require.NoError(t, err)
	return ok
}

func str(s string) *string { return &s }

func completeEventPatch() domain.EventDraftPatch {
	cat := domain.CategoryLiveMusic
	return domain.EventDraftPatch{
		Name:         str("Đêm nhạc Trịnh"),
		CoverURL:     str("https://cdn.tixflow.net/images/cover.png"),
		Location:     str("Nhà hát Hòa Bình"),
		Category:     &cat,
		Time:         str("2026-12-24T20:00:00+07:00"),
		Introduction: str("Giới thiệu"),
		Description:  str("Chi tiết"),
	}
}

func ticketPatch(price int64, qty int) domain.TicketDraftPatch {
	one := 1
	return domain.TicketDraftPatch{
		Name:        str("Vé VIP"),
		ImageURL:    str("https://cdn.tixflow.net/images/vip.png"),
		Description: str("Hàng ghế đầu"),
		Price:       &price,
		Quantity:    &qty,
		MinInOrder:  &one,
		MaxInOrder:  &qty,
	}
}

// toPayment walks a session to the payment step through the event selection
// path.
func (f *fixture) toPayment(t *testing.T, price int64, qty int) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.SelectEvent(ctx, sid, "ev-1")
	require.NoError(t, err)
	_, err = f.svc.EditTicketDraft(ctx, sid, ticketPatch(price, qty))
	require.NoError(t, err)

	f.api.On("CreateTicket", mock.Anything, "tok", mock.MatchedBy(func(in domain.CreateTicketInput) bool {
		return in.EventID == "ev-1"
	})).Return(&domain.Ticket{ID: "tk-1"}, nil).Once()
	_, err = f.svc.CreateTicket(ctx, sid, "tok")
	require.NoError(t, err)
}

// toPending opens the listing fee order so a payment verdict can apply.
func (f *fixture) toPending(t *testing.T, price int64, qty int) {
	t.Helper()
	f.toPayment(t, price, qty)
	f.api.On("CreateOrder", mock.Anything, "tok", mock.Anything).
		Return(&domain.Order{ID: "ord-1", PaymentURL: "https://pay.tixflow.net/p/ord-1"}, nil).Once()
	_, err := f.svc.RequestPayment(context.Background(), sid, "tok")
	require.NoError(t, err)
}

func TestResume_FreshSessionStartsAtEventStep(t *testing.T) {
	f := newFixture(t)

	v, err := f.svc.Resume(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepEvent, v.State.ActiveStep)
	assert.Nil(t, v.State.SelectedEventID)
	assert.Equal(t, domain.NewTicketDraft(), v.TicketDraft)
}

func TestResume_RequiresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Resume(context.Background(), "")
	assert.True(t, domain.Is(err, domain.CodeUnauthorized))
}

func TestForwardGating(t *testing.T) {
	ctx := context.Background()

	t.Run("ticket_step_needs_an_event", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateTicket(ctx, sid, "tok")
		assert.True(t, domain.Is(err, domain.CodeInvalidState))
		f.api.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payment_needs_a_ticket", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SelectEvent(ctx, sid, "ev-1")
		require.NoError(t, err)

		_, err = f.svc.RequestPayment(ctx, sid, "tok")
		assert.True(t, domain.Is(err, domain.CodeInvalidState))
		f.api.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank_event_id_is_rejected", func(t *testing.T) {
		f := newFixture(t)
		v, err := f.svc.SelectEvent(ctx, sid, "  ")
		assert.True(t, domain.Is(err, domain.CodeValidation))
		assert.Equal(t, domain.StepEvent, v.State.ActiveStep)
	})

	t.Run("incomplete_event_draft_never_reaches_remote", func(t *testing.T) {
		f := newFixture(t)
		p := completeEventPatch()
		p.Location = str("")
		p.Introduction = str("")
		_, err := f.svc.EditEventDraft(ctx, sid, p)
		require.NoError(t, err)

		v, err := f.svc.CreateEvent(ctx, sid, "tok")
		var ae *domain.AppError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, domain.CodeValidation, ae.Code)
		assert.Len(t, ae.Details, 2)
		assert.Equal(t, domain.StepEvent, v.State.ActiveStep)
		f.api.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateEvent_AdvancesAndClearsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.EditEventDraft(ctx, sid, completeEventPatch())
	require.NoError(t, err)
	require.True(t, f.stored(t, "create_ticket_event_draft"))

	f.api.On("CreateEvent", mock.Anything, "tok", mock.MatchedBy(func(in domain.CreateEventInput) bool {
		return in.Name == "Đêm nhạc Trịnh" && in.Category == "live_music" && in.Time.Year() == 2026
	})).Return(&domain.Event{ID: "ev-9"}, nil).Once()

	v, err := f.svc.CreateEvent(ctx, sid, "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.StepTicket, v.State.ActiveStep)
	require.NotNil(t, v.State.SelectedEventID)
	assert.Equal(t, "ev-9", *v.State.SelectedEventID)
	assert.Equal(t, domain.NewEventDraft(), v.EventDraft)

	assert.False(t, f.stored(t, "create_ticket_event_draft"))
	assert.True(t, f.stored(t, "create_ticket_selected_event"))
	assert.Equal(t, 1, f.events.calls)
	f.api.AssertExpectations(t)
}

func TestCreateEvent_RemoteFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.EditEventDraft(ctx, sid, completeEventPatch())
	require.NoError(t, err)
	before, err := f.svc.Resume(ctx, sid)
	require.NoError(t, err)

	f.api.On("CreateEvent", mock.Anything, "tok", mock.Anything).Return(nil, errors.New("boom")).Once()
	_, err = f.svc.CreateEvent(ctx, sid, "tok")
	assert.True(t, domain.Is(err, domain.CodeGateway))

	after, err := f.svc.Resume(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.True(t, f.stored(t, "create_ticket_event_draft"))
	assert.Equal(t, 0, f.events.calls)
}

func TestCreateTicket_SnapshotsListing(t *testing.T) {
	f := newFixture(t)
	f.toPayment(t, 1_500_000, 3)

	v, err := f.svc.Resume(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPayment, v.State.ActiveStep)
	require.NotNil(t, v.State.TicketID)
	assert.Equal(t, "tk-1", *v.State.TicketID)
	assert.Equal(t, int64(1_500_000), v.State.ListedPrice)
	assert.Equal(t, 3, v.State.ListedQuantity)
	assert.Equal(t, int64(150_000), v.Fee)
	assert.Equal(t, domain.NewTicketDraft(), v.TicketDraft)
	assert.False(t, f.stored(t, "create_ticket_data_draft"))
}

func TestBack_ResetsCompletionTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toPayment(t, 200_000, 2)

	v, err := f.svc.Back(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepTicket, v.State.ActiveStep)
	assert.Nil(t, v.State.TicketID)
	assert.Equal(t, domain.PaymentNone, v.State.PaymentStatus)
	require.NotNil(t, v.State.SelectedEventID)

	v, err = f.svc.Back(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepEvent, v.State.ActiveStep)
	assert.Nil(t, v.State.SelectedEventID)
	assert.False(t, f.stored(t, "create_ticket_selected_event"))

	_, err = f.svc.Back(ctx, sid)
	assert.True(t, domain.Is(err, domain.CodeInvalidState))
}

func TestRequestPayment_CreatesOrderForFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toPayment(t, 200_000, 2)

	f.api.On("CreateOrder", mock.Anything, "tok", domain.CreateOrderInput{
		TicketID: "tk-1",
		Type:     domain.OrderTypeListingFee,
		Price:    60_000,
		Quantity: 2,
	}).Return(&domain.Order{ID: "ord-1", PaymentURL: "https://pay.tixflow.net/p/ord-1"}, nil).Once()

	ps, err := f.svc.RequestPayment(ctx, sid, "tok")
	require.NoError(t, err)
	assert.Equal(t, &domain.PaymentSession{OrderID: "ord-1", PaymentURL: "https://pay.tixflow.net/p/ord-1", Fee: 60_000}, ps)

	v, _ := f.svc.Resume(ctx, sid)
	assert.Equal(t, domain.PaymentPending, v.State.PaymentStatus)
	f.api.AssertExpectations(t)
}

func TestTransitionInFlight_RejectsSecondSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.EditEventDraft(ctx, sid, completeEventPatch())
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.api.On("CreateEvent", mock.Anything, "tok", mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&domain.Event{ID: "ev-1"}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.CreateEvent(ctx, sid, "tok")
		done <- err
	}()
	<-entered

	_, err = f.svc.CreateEvent(ctx, sid, "tok")
	assert.True(t, domain.Is(err, domain.CodeTransitionInFlight))
	_, err = f.svc.EditEventDraft(ctx, sid, domain.EventDraftPatch{Name: str("x")})
	assert.True(t, domain.Is(err, domain.CodeTransitionInFlight))

	v, err := f.svc.Resume(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepEvent, v.State.ActiveStep)

	close(release)
	require.NoError(t, <-done)
	f.api.AssertNumberOfCalls(t, "CreateEvent", 1)
}

func TestCompletePayment_RequiresOpenOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toPayment(t, 200_000, 2)

	for _, status := range []domain.PaymentStatus{domain.PaymentSuccess, domain.PaymentFailed} {
		st, err := f.svc.CompletePayment(ctx, sid, status)
		assert.True(t, domain.Is(err, domain.CodeInvalidState), status)
		assert.Equal(t, domain.PaymentNone, st.PaymentStatus)
	}
	assert.True(t, f.stored(t, "create_ticket_selected_event"))
	assert.True(t, f.stored(t, "create_ticket_active_tab"))
}

func TestCompletePayment_FailedCanStillSucceed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toPending(t, 200_000, 2)

	_, err := f.svc.CompletePayment(ctx, sid, domain.PaymentFailed)
	require.NoError(t, err)
	done, err := f.svc.CompletePayment(ctx, sid, domain.PaymentSuccess)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, done.PaymentStatus)
}

func TestCompletePayment_SuccessPurgesDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toPending(t, 200_000, 2)

	done, err := f.svc.CompletePayment(ctx, sid, domain.PaymentSuccess)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, done.PaymentStatus)
	require.NotNil(t, done.TicketID)
	assert.Equal(t, "tk-1", *done.TicketID)

	for _, k := range domain.DefaultDraftKeys().Drafts() {
		assert.False(t, f.stored(t, k), k)
	}
	assert.True(t, f.stored(t, "create_ticket_session"))

	v, err := f.svc.Resume(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepEvent, v.State.ActiveStep)
	assert.True(t, v.State.Terminal())

	_, err = f.svc.CompletePayment(ctx, sid, domain.PaymentSuccess)
	assert.True(t, domain.Is(err, domain.CodeInvalidState))
}

func TestCompletePayment_FailureKeepsDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toPending(t, 200_000, 2)

	st, err := f.svc.CompletePayment(ctx, sid, domain.PaymentFailed)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, st.PaymentStatus)
	assert.Equal(t, domain.StepPayment, st.ActiveStep)
	assert.True(t, f.stored(t, "create_ticket_active_tab"))
	assert.True(t, f.stored(t, "create_ticket_selected_event"))

	// a restart resumes at the failed payment
	v, err := f.newService().Resume(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPayment, v.State.ActiveStep)
	assert.Equal(t, domain.PaymentFailed, v.State.PaymentStatus)
}

func TestResume_RestoresAfterRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SelectEvent(ctx, sid, "ev-1")
	require.NoError(t, err)
	_, err = f.svc.EditTicketDraft(ctx, sid, domain.TicketDraftPatch{Name: str("Vé thường")})
	require.NoError(t, err)

	v, err := f.newService().Resume(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepTicket, v.State.ActiveStep)
	require.NotNil(t, v.State.SelectedEventID)
	assert.Equal(t, "ev-1", *v.State.SelectedEventID)
	assert.Equal(t, "Vé thường", v.TicketDraft.Name)
	assert.Equal(t, 1, v.TicketDraft.Quantity)
}

func TestResume_DegradesUnbackedStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ss := f.store.Session(sid)
	ss.Save(ctx, "create_ticket_active_tab", domain.TabRecord{Step: domain.StepPayment})

	v, err := f.svc.Resume(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.StepEvent, v.State.ActiveStep)
	assert.True(t, v.State.Consistent())
}

func TestSessionEnded_PurgesDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SelectEvent(ctx, sid, "ev-1")
	require.NoError(t, err)
	_, err = f.svc.EditTicketDraft(ctx, sid, domain.TicketDraftPatch{Name: str("Vé")})
	require.NoError(t, err)

	// signed out from another tab: only the sentinel is gone
	f.store.Session(sid).Clear(ctx, "create_ticket_session")

	_, err = f.svc.Resume(ctx, sid)
	assert.True(t, domain.Is(err, domain.CodeSessionEnded))
	assert.Equal(t, 0, f.kv.Len())
}

func TestEndSession_RemovesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.EditEventDraft(ctx, sid, completeEventPatch())
	require.NoError(t, err)

	f.svc.EndSession(ctx, sid)
	assert.Equal(t, 0, f.kv.Len())

	_, err = f.svc.Resume(ctx, sid)
	assert.True(t, domain.Is(err, domain.CodeSessionEnded))
}

func TestEndSession_DropsPendingAutosave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewService(f.store, f.api, Options{Keys: domain.DefaultDraftKeys(), Fees: DefaultFeeSchedule(), Autosave: time.Hour})

	_, err := svc.EditEventDraft(ctx, sid, completeEventPatch())
	require.NoError(t, err)
	assert.False(t, f.stored(t, "create_ticket_event_draft"))

	svc.EndSession(ctx, sid)
	svc.FlushSession(ctx, sid)
	assert.Equal(t, 0, f.kv.Len())
}

// blockingKV holds the nth Delete until release is closed.
type blockingKV struct {
	*memory.KV
	nth     int32
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newBlockingKV(nth int32) *blockingKV {
	return &blockingKV{
		KV:      memory.NewKV(),
		nth:     nth,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingKV) Delete(ctx context.Context, keys ...string) error {
	if b.calls.Add(1) == b.nth {
		close(b.entered)
		<-b.release
	}
	return b.KV.Delete(ctx, keys...)
}

func newBlockingFixture(t *testing.T, nth int32) (*blockingKV, *Service) {
	t.Helper()
	kv := newBlockingKV(nth)
	svc := NewService(draft.NewStore(kv, time.Hour), new(MockRemoteAPI), Options{
		Keys:     domain.DefaultDraftKeys(),
		Fees:     DefaultFeeSchedule(),
		Autosave: 0,
	})
	svc.BeginSession(context.Background(), sid)
	return kv, svc
}

func TestEndSession_EditDuringSignOutDoesNotSurvive(t *testing.T) {
	ctx := context.Background()
	// first Delete is the sentinel
	kv, svc := newBlockingFixture(t, 1)

	_, err := svc.EditEventDraft(ctx, sid, domain.EventDraftPatch{Name: str("before logout")})
	require.NoError(t, err)

	ended := make(chan struct{})
	go func() {
		svc.EndSession(ctx, sid)
		close(ended)
	}()
	<-kv.entered

	_, _ = svc.EditEventDraft(ctx, sid, domain.EventDraftPatch{Description: str("concurrent")})
	close(kv.release)
	<-ended

	svc.BeginSession(ctx, sid)
	v, err := svc.Resume(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, v.EventDraft.Name)
	assert.Empty(t, v.EventDraft.Description)
}

func TestEndSession_WaitingRequestSeesSessionEnded(t *testing.T) {
	ctx := context.Background()
	// second Delete is the draft purge, run while the machine is held
	kv, svc := newBlockingFixture(t, 2)

	_, err := svc.EditEventDraft(ctx, sid, domain.EventDraftPatch{Name: str("Hòa nhạc")})
	require.NoError(t, err)

	ended := make(chan struct{})
	go func() {
		svc.EndSession(ctx, sid)
		close(ended)
	}()
	<-kv.entered

	edited := make(chan error, 1)
	go func() {
		_, err := svc.EditEventDraft(ctx, sid, domain.EventDraftPatch{Description: str("late")})
		edited <- err
	}()
	close(kv.release)
	<-ended

	assert.True(t, domain.Is(<-edited, domain.CodeSessionEnded))
	assert.Equal(t, 0, kv.Len())
}

func TestBeginSession_FlushesCachedMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewService(f.store, f.api, Options{Keys: domain.DefaultDraftKeys(), Fees: DefaultFeeSchedule(), Autosave: time.Hour})

	_, err := svc.EditEventDraft(ctx, sid, domain.EventDraftPatch{Name: str("Hòa nhạc")})
	require.NoError(t, err)
	assert.False(t, f.stored(t, "create_ticket_event_draft"))

	svc.BeginSession(ctx, sid)
	assert.True(t, f.stored(t, "create_ticket_event_draft"))

	v, err := svc.Resume(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "Hòa nhạc", v.EventDraft.Name)
}

func TestEvict_FlushesAndRehydrates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewService(f.store, f.api, Options{Keys: domain.DefaultDraftKeys(), Fees: DefaultFeeSchedule(), Autosave: time.Hour})

	_, err := svc.EditEventDraft(ctx, sid, domain.EventDraftPatch{Name: str("Hòa nhạc")})
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Evict(ctx, -time.Second))
	assert.True(t, f.stored(t, "create_ticket_event_draft"))

	v, err := svc.Resume(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "Hòa nhạc", v.EventDraft.Name)
}
