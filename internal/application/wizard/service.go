// Package wizard drives the three-step ticket listing flow: pick or create
// an event, describe the ticket, pay the listing fee.
package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tixflow/listing-service/internal/application/draft"
	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/metrics"
)

type Options struct {
	Keys     domain.DraftKeys
	Fees     FeeSchedule
	Autosave time.Duration
	Events   EventsInvalidator
}

// Service owns every session's machine and is the only writer of the draft
// store.
type Service struct {
	store    *draft.Store
	api      RemoteAPI
	keys     domain.DraftKeys
	fees     FeeSchedule
	autosave time.Duration
	events   EventsInvalidator

	mu       sync.Mutex
	sessions map[string]*Machine
}

func NewService(store *draft.Store, api RemoteAPI, opts Options) *Service {
	return &Service{
		store:    store,
		api:      api,
		keys:     opts.Keys,
		fees:     opts.Fees,
		autosave: opts.Autosave,
		events:   opts.Events,
		sessions: make(map[string]*Machine),
	}
}

func (s *Service) Fees() FeeSchedule { return s.fees }

// BeginSession marks sid as signed in. Drafts left by an earlier sign-in of
// the same browser stay resumable; a machine cached from before is flushed
// and dropped so the next request hydrates from storage.
func (s *Service) BeginSession(ctx context.Context, sid string) {
	s.store.Session(sid).Save(ctx, s.keys.Session, time.Now().UTC().Format(time.RFC3339))

	s.mu.Lock()
	m := s.sessions[sid]
	s.mu.Unlock()
	if m != nil {
		m.mu.Lock()
		if !m.retired && !m.inFlight {
			s.retire(ctx, sid, m)
		}
		m.mu.Unlock()
	}
	logger.Ctx(ctx).Info().Msg("wizard_session_started")
}

// EndSession signs sid out: the sentinel goes first so concurrent requests
// fail closed, then pending autosaves are dropped and every draft key is
// removed.
func (s *Service) EndSession(ctx context.Context, sid string) {
	s.store.Session(sid).Clear(ctx, s.keys.Session)
	s.purgeSession(ctx, sid, "logout")
	logger.Ctx(ctx).Info().Msg("wizard_session_ended")
}

func (s *Service) purgeSession(ctx context.Context, sid, cause string) {
	s.mu.Lock()
	m := s.sessions[sid]
	s.mu.Unlock()

	if m != nil {
		m.mu.Lock()
		if !m.retired {
			m.purge(ctx)
			s.retire(ctx, sid, m)
		}
		m.mu.Unlock()
	}
	s.store.Session(sid).Clear(ctx, s.keys.Drafts()...)
	metrics.RecordDraftPurge(cause)
}

// retire unlinks m from sid and flushes whatever it still buffers. Requests
// already waiting on m see retired and start over on a fresh machine.
// Caller holds m.mu.
func (s *Service) retire(ctx context.Context, sid string, m *Machine) {
	s.mu.Lock()
	if s.sessions[sid] == m {
		delete(s.sessions, sid)
	}
	s.mu.Unlock()
	m.retired = true
	m.writer.Close(ctx)
}

// acquire returns the locked, hydrated machine of sid. The sentinel is
// checked while holding the machine, so a sign-out either waits for this
// request or is seen by it. A session whose sentinel is gone was signed out
// elsewhere: its drafts are purged and ErrSessionEnded is returned.
func (s *Service) acquire(ctx context.Context, sid string) (*Machine, error) {
	if strings.TrimSpace(sid) == "" {
		return nil, domain.ErrUnauthorized(domain.MsgLoginRequired)
	}
	ss := s.store.Session(sid)

	for {
		s.mu.Lock()
		m, ok := s.sessions[sid]
		if !ok {
			m = newMachine(ss, s.keys, s.autosave)
			s.sessions[sid] = m
		}
		s.mu.Unlock()

		m.mu.Lock()
		if m.retired {
			m.mu.Unlock()
			continue
		}

		active, err := ss.Exists(ctx, s.keys.Session)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("session_sentinel_unreadable")
			active = true
		}
		if !active {
			m.purge(ctx)
			s.retire(ctx, sid, m)
			m.mu.Unlock()
			ss.Clear(ctx, s.keys.Drafts()...)
			metrics.RecordDraftPurge("session_ended")
			return nil, domain.ErrSessionEnded()
		}

		m.hydrate(ctx)
		return m, nil
	}
}

func (s *Service) Resume(ctx context.Context, sid string) (View, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return View{}, err
	}
	defer m.mu.Unlock()
	return m.view(s.fees), nil
}

func (s *Service) EditEventDraft(ctx context.Context, sid string, p domain.EventDraftPatch) (View, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return View{}, err
	}
	defer m.mu.Unlock()
	if err := m.editEvent(p); err != nil {
		return m.view(s.fees), err
	}
	return m.view(s.fees), nil
}

func (s *Service) EditTicketDraft(ctx context.Context, sid string, p domain.TicketDraftPatch) (View, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return View{}, err
	}
	defer m.mu.Unlock()
	if err := m.editTicket(p); err != nil {
		return m.view(s.fees), err
	}
	return m.view(s.fees), nil
}

func (s *Service) SelectEvent(ctx context.Context, sid, eventID string) (View, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return View{}, err
	}
	defer m.mu.Unlock()
	if err := m.selectEvent(ctx, eventID); err != nil {
		return m.view(s.fees), err
	}
	return m.view(s.fees), nil
}

func (s *Service) Back(ctx context.Context, sid string) (View, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return View{}, err
	}
	defer m.mu.Unlock()
	if err := m.back(ctx); err != nil {
		return m.view(s.fees), err
	}
	return m.view(s.fees), nil
}

// CreateEvent submits the event draft. On success the new event becomes the
// selected one and the wizard moves to the ticket step.
func (s *Service) CreateEvent(ctx context.Context, sid, token string) (View, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return View{}, err
	}
	if err := m.begin(domain.StepEvent, domain.MsgInvalidRequest); err != nil {
		defer m.mu.Unlock()
		return m.view(s.fees), err
	}
	in, err := eventInput(m.event)
	if err != nil {
		defer m.mu.Unlock()
		metrics.RecordTransition("create_event", "invalid")
		return m.view(s.fees), err
	}
	m.inFlight = true
	m.mu.Unlock()

	ev, err := s.api.CreateEvent(ctx, token, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if m.retired {
		return View{}, domain.ErrSessionEnded()
	}
	if err != nil {
		metrics.RecordTransition("create_event", "remote_error")
		logger.Ctx(ctx).Warn().Err(err).Msg("create_event_failed")
		return m.view(s.fees), domain.ErrGateway(domain.MsgCreateEventFailed, err)
	}

	id := ev.ID
	m.clearLastOutcome()
	m.state.SelectedEventID = &id
	m.state.ActiveStep = domain.StepTicket
	m.dropEventDraft(ctx)
	m.persistSelected(ctx)
	m.persistTab(ctx)
	if s.events != nil {
		s.events.Invalidate(ctx)
	}
	metrics.RecordTransition("create_event", "ok")
	logger.Ctx(ctx).Info().Str("event_id", id).Msg("event_created")
	return m.view(s.fees), nil
}

// CreateTicket submits the ticket draft for the selected event and moves the
// wizard to payment.
func (s *Service) CreateTicket(ctx context.Context, sid, token string) (View, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return View{}, err
	}
	if err := m.begin(domain.StepTicket, domain.MsgEventRequired); err != nil {
		defer m.mu.Unlock()
		return m.view(s.fees), err
	}
	if m.state.SelectedEventID == nil {
		defer m.mu.Unlock()
		return m.view(s.fees), domain.ErrInvalidState(domain.MsgEventRequired)
	}
	in, err := ticketInput(*m.state.SelectedEventID, m.ticket)
	if err != nil {
		defer m.mu.Unlock()
		metrics.RecordTransition("create_ticket", "invalid")
		return m.view(s.fees), err
	}
	m.inFlight = true
	m.mu.Unlock()

	tk, err := s.api.CreateTicket(ctx, token, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if m.retired {
		return View{}, domain.ErrSessionEnded()
	}
	if err != nil {
		metrics.RecordTransition("create_ticket", "remote_error")
		logger.Ctx(ctx).Warn().Err(err).Msg("create_ticket_failed")
		return m.view(s.fees), domain.ErrGateway(domain.MsgCreateTicketFailed, err)
	}

	id := tk.ID
	m.state.TicketID = &id
	m.state.ListedPrice = in.Price
	m.state.ListedQuantity = in.Quantity
	m.state.PaymentStatus = domain.PaymentNone
	m.state.ActiveStep = domain.StepPayment
	m.dropTicketDraft(ctx)
	m.persistTab(ctx)
	metrics.RecordTransition("create_ticket", "ok")
	logger.Ctx(ctx).Info().Str("ticket_id", id).Msg("ticket_created")
	return m.view(s.fees), nil
}

// RequestPayment opens a payment session for the listing fee of the created
// ticket.
func (s *Service) RequestPayment(ctx context.Context, sid, token string) (*domain.PaymentSession, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := m.begin(domain.StepPayment, domain.MsgTicketRequired); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if m.state.TicketID == nil || m.state.PaymentStatus == domain.PaymentSuccess {
		m.mu.Unlock()
		return nil, domain.ErrInvalidState(domain.MsgTicketRequired)
	}
	fee := s.fees.Total(m.state.ListedPrice, m.state.ListedQuantity)
	in := domain.CreateOrderInput{
		TicketID: *m.state.TicketID,
		Type:     domain.OrderTypeListingFee,
		Price:    fee,
		Quantity: m.state.ListedQuantity,
	}
	m.inFlight = true
	m.mu.Unlock()

	order, err := s.api.CreateOrder(ctx, token, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if m.retired {
		return nil, domain.ErrSessionEnded()
	}
	if err != nil {
		metrics.RecordTransition("request_payment", "remote_error")
		logger.Ctx(ctx).Warn().Err(err).Msg("create_order_failed")
		return nil, domain.ErrGateway(domain.MsgCreateOrderFailed, err)
	}

	m.state.PaymentStatus = domain.PaymentPending
	m.persistTab(ctx)
	metrics.RecordTransition("request_payment", "ok")
	return &domain.PaymentSession{OrderID: order.ID, PaymentURL: order.PaymentURL, Fee: fee}, nil
}

// CompletePayment applies the payment frame's verdict. Success purges every
// draft and returns the state as it was at completion; failure keeps the
// drafts so the user can retry.
func (s *Service) CompletePayment(ctx context.Context, sid string, status domain.PaymentStatus) (domain.WizardState, error) {
	m, err := s.acquire(ctx, sid)
	if err != nil {
		return domain.WizardState{}, err
	}
	defer m.mu.Unlock()

	if m.state.ActiveStep != domain.StepPayment || m.state.TicketID == nil {
		return cloneState(m.state), domain.ErrInvalidState(domain.MsgTicketRequired)
	}
	// a verdict only applies to an order that was actually opened; failed
	// stays open for a retry
	switch m.state.PaymentStatus {
	case domain.PaymentPending, domain.PaymentFailed:
	default:
		return cloneState(m.state), domain.ErrInvalidState(domain.MsgPaymentNotRequested)
	}

	switch status {
	case domain.PaymentSuccess:
		done := cloneState(m.state)
		done.PaymentStatus = domain.PaymentSuccess
		m.purge(ctx)
		// the fresh machine remembers how the last listing ended until the
		// next one starts
		m.state.PaymentStatus = domain.PaymentSuccess
		metrics.RecordDraftPurge("payment_success")
		metrics.RecordTransition("complete_payment", "success")
		logger.Ctx(ctx).Info().Str("ticket_id", *done.TicketID).Msg("listing_paid")
		return done, nil
	case domain.PaymentFailed:
		m.state.PaymentStatus = domain.PaymentFailed
		m.persistTab(ctx)
		metrics.RecordTransition("complete_payment", "failed")
		return cloneState(m.state), nil
	default:
		return cloneState(m.state), domain.ErrValidation(domain.MsgInvalidRequest)
	}
}

// FlushSession writes sid's pending autosaves now.
func (s *Service) FlushSession(ctx context.Context, sid string) {
	s.mu.Lock()
	m := s.sessions[sid]
	s.mu.Unlock()
	if m != nil {
		m.writer.FlushNow(ctx)
	}
}

// Evict flushes and forgets machines idle for longer than idle. Their state
// stays in the draft store and is hydrated again on the next request.
func (s *Service) Evict(ctx context.Context, idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	type candidate struct {
		sid string
		m   *Machine
	}
	var stale []candidate

	s.mu.Lock()
	for sid, m := range s.sessions {
		if !m.mu.TryLock() {
			continue
		}
		if !m.inFlight && m.lastUsed.Before(cutoff) {
			stale = append(stale, candidate{sid: sid, m: m})
		}
		m.mu.Unlock()
	}
	s.mu.Unlock()

	n := 0
	for _, c := range stale {
		c.m.mu.Lock()
		if !c.m.retired && !c.m.inFlight && c.m.lastUsed.Before(cutoff) {
			s.retire(ctx, c.sid, c.m)
			n++
		}
		c.m.mu.Unlock()
	}
	return n
}

// RunJanitor evicts idle machines every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Evict(ctx, idle); n > 0 {
				logger.Log.Debug().Int("evicted", n).Msg("wizard_sessions_evicted")
			}
		}
	}
}

// Close flushes every session's pending autosaves.
func (s *Service) Close(ctx context.Context) {
	s.mu.Lock()
	machines := make([]*Machine, 0, len(s.sessions))
	for _, m := range s.sessions {
		machines = append(machines, m)
	}
	s.mu.Unlock()

	for _, m := range machines {
		m.writer.Close(ctx)
	}
}
