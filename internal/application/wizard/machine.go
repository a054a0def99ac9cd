package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tixflow/listing-service/internal/application/draft"
	"github.com/tixflow/listing-service/internal/application/validation"
	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/metrics"
)

// Machine is the wizard of one browser session. Every read and write of
// its state goes through mu; remote calls run outside mu while inFlight
// keeps a second transition out.
type Machine struct {
	mu sync.Mutex

	keys   domain.DraftKeys
	store  *draft.SessionStore
	writer *draft.Writer

	state  domain.WizardState
	event  domain.EventDraft
	ticket domain.TicketDraft

	loaded   bool
	inFlight bool
	retired  bool // unlinked from the session map; holders must start over
	lastUsed time.Time
}

func newMachine(store *draft.SessionStore, keys domain.DraftKeys, autosave time.Duration) *Machine {
	return &Machine{
		keys:   keys,
		store:  store,
		writer: draft.NewWriter(store, autosave),
		state:  domain.NewWizardState(),
		event:  domain.NewEventDraft(),
		ticket: domain.NewTicketDraft(),
	}
}

// hydrate restores the machine from storage once. A stored step whose
// completion token is gone falls back to the furthest step still backed.
// Caller holds mu.
func (m *Machine) hydrate(ctx context.Context) {
	m.lastUsed = time.Now()
	if m.loaded {
		return
	}
	m.loaded = true

	m.store.Load(ctx, m.keys.EventDraft, &m.event)
	m.store.Load(ctx, m.keys.TicketDraft, &m.ticket)

	var selected string
	if m.store.Load(ctx, m.keys.SelectedEvent, &selected) && strings.TrimSpace(selected) != "" {
		m.state.SelectedEventID = &selected
	}

	tab := domain.TabRecord{Step: domain.StepEvent}
	if m.store.Load(ctx, m.keys.ActiveTab, &tab) {
		m.state.ActiveStep = tab.Step
		m.state.TicketID = tab.TicketID
		m.state.PaymentStatus = tab.PaymentStatus
		m.state.ListedPrice = tab.ListedPrice
		m.state.ListedQuantity = tab.ListedQuantity
	}

	if !m.state.Consistent() {
		logger.Ctx(ctx).Warn().Str("step", string(m.state.ActiveStep)).Msg("wizard_state_degraded")
		switch {
		case m.state.SelectedEventID != nil:
			m.state.ActiveStep = domain.StepTicket
		default:
			m.state.ActiveStep = domain.StepEvent
		}
		m.state.TicketID = nil
		m.state.PaymentStatus = domain.PaymentNone
		m.state.ListedPrice, m.state.ListedQuantity = 0, 0
	}
}

// view snapshots the machine. Caller holds mu.
func (m *Machine) view(fees FeeSchedule) View {
	v := View{State: cloneState(m.state), EventDraft: m.event, TicketDraft: m.ticket}
	if m.state.ActiveStep == domain.StepPayment {
		v.Fee = fees.Total(m.state.ListedPrice, m.state.ListedQuantity)
	}
	return v
}

// begin admits a transition from step want. Caller holds mu.
func (m *Machine) begin(want domain.Step, wrongStepMsg string) error {
	if m.inFlight {
		return domain.ErrTransitionInFlight()
	}
	if m.state.ActiveStep != want {
		return domain.ErrInvalidState(wrongStepMsg)
	}
	return nil
}

// clearLastOutcome drops a finished payment's status once the user starts
// the next listing. Caller holds mu.
func (m *Machine) clearLastOutcome() {
	if m.state.ActiveStep == domain.StepEvent && m.state.PaymentStatus != domain.PaymentNone {
		m.state.PaymentStatus = domain.PaymentNone
	}
}

func (m *Machine) persistTab(ctx context.Context) {
	m.store.Save(ctx, m.keys.ActiveTab, domain.TabRecord{
		Step:           m.state.ActiveStep,
		TicketID:       m.state.TicketID,
		PaymentStatus:  m.state.PaymentStatus,
		ListedPrice:    m.state.ListedPrice,
		ListedQuantity: m.state.ListedQuantity,
	})
}

func (m *Machine) persistSelected(ctx context.Context) {
	if m.state.SelectedEventID == nil {
		m.store.Clear(ctx, m.keys.SelectedEvent)
		return
	}
	m.store.Save(ctx, m.keys.SelectedEvent, *m.state.SelectedEventID)
}

func (m *Machine) dropEventDraft(ctx context.Context) {
	m.writer.Discard(m.keys.EventDraft)
	m.store.Clear(ctx, m.keys.EventDraft)
	m.event = domain.NewEventDraft()
}

func (m *Machine) dropTicketDraft(ctx context.Context) {
	m.writer.Discard(m.keys.TicketDraft)
	m.store.Clear(ctx, m.keys.TicketDraft)
	m.ticket = domain.NewTicketDraft()
}

// purge discards pending writes, removes every draft key and resets the
// machine. Caller holds mu.
func (m *Machine) purge(ctx context.Context) {
	m.writer.Discard()
	m.store.Clear(ctx, m.keys.Drafts()...)
	m.state = domain.NewWizardState()
	m.event = domain.NewEventDraft()
	m.ticket = domain.NewTicketDraft()
}

func (m *Machine) editEvent(p domain.EventDraftPatch) error {
	if m.inFlight {
		return domain.ErrTransitionInFlight()
	}
	if m.state.ActiveStep != domain.StepEvent {
		return domain.ErrInvalidState(domain.MsgInvalidRequest)
	}
	m.clearLastOutcome()
	m.event.Apply(p)
	m.writer.Put(m.keys.EventDraft, m.event)
	return nil
}

func (m *Machine) editTicket(p domain.TicketDraftPatch) error {
	if m.inFlight {
		return domain.ErrTransitionInFlight()
	}
	if m.state.ActiveStep != domain.StepTicket {
		return domain.ErrInvalidState(domain.MsgEventRequired)
	}
	m.ticket.Apply(p)
	m.writer.Put(m.keys.TicketDraft, m.ticket)
	return nil
}

func (m *Machine) selectEvent(ctx context.Context, eventID string) error {
	if err := m.begin(domain.StepEvent, domain.MsgInvalidRequest); err != nil {
		return err
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return domain.ErrValidation(domain.MsgEventRequired)
	}
	m.clearLastOutcome()
	m.state.SelectedEventID = &eventID
	m.state.ActiveStep = domain.StepTicket
	m.dropEventDraft(ctx)
	m.persistSelected(ctx)
	m.persistTab(ctx)
	metrics.RecordTransition("select_event", "ok")
	return nil
}

func (m *Machine) back(ctx context.Context) error {
	if m.inFlight {
		return domain.ErrTransitionInFlight()
	}
	switch m.state.ActiveStep {
	case domain.StepTicket:
		m.state.SelectedEventID = nil
		m.state.ActiveStep = domain.StepEvent
		m.persistSelected(ctx)
	case domain.StepPayment:
		if m.state.PaymentStatus == domain.PaymentSuccess {
			return domain.ErrInvalidState(domain.MsgNoStepBack)
		}
		m.state.TicketID = nil
		m.state.PaymentStatus = domain.PaymentNone
		m.state.ListedPrice, m.state.ListedQuantity = 0, 0
		m.state.ActiveStep = domain.StepTicket
	default:
		return domain.ErrInvalidState(domain.MsgNoStepBack)
	}
	m.persistTab(ctx)
	metrics.RecordTransition("back", "ok")
	return nil
}

// eventInput validates the event draft and converts it for the remote API.
func eventInput(d domain.EventDraft) (domain.CreateEventInput, error) {
	if errs := validation.Validate(d, validation.EventRules()); len(errs) > 0 {
		return domain.CreateEventInput{}, domain.ErrValidationList(errs)
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(d.Time))
	if err != nil {
		return domain.CreateEventInput{}, domain.ErrValidation(domain.MsgFormInvalid)
	}
	return domain.CreateEventInput{
		Name:         strings.TrimSpace(d.Name),
		Image:        d.CoverURL,
		Location:     strings.TrimSpace(d.Location),
		Category:     string(d.Category),
		Time:         at,
		Introduction: d.Introduction,
		Description:  d.Description,
		Condition:    d.Condition,
	}, nil
}

func ticketInput(eventID string, d domain.TicketDraft) (domain.CreateTicketInput, error) {
	if errs := validation.Validate(d, validation.TicketRules()); len(errs) > 0 {
		return domain.CreateTicketInput{}, domain.ErrValidationList(errs)
	}
	return domain.CreateTicketInput{
		EventID:     eventID,
		Name:        strings.TrimSpace(d.Name),
		Image:       d.ImageURL,
		Description: d.Description,
		Price:       d.Price,
		Quantity:    d.Quantity,
		MinInOrder:  d.MinInOrder,
		MaxInOrder:  d.MaxInOrder,
	}, nil
}

func cloneState(s domain.WizardState) domain.WizardState {
	if s.SelectedEventID != nil {
		v := *s.SelectedEventID
		s.SelectedEventID = &v
	}
	if s.TicketID != nil {
		v := *s.TicketID
		s.TicketID = &v
	}
	return s
}
