package domain

type Step string

const (
	StepEvent   Step = "event"
	StepTicket  Step = "ticket"
	StepPayment Step = "payment"
)

type PaymentStatus string

const (
	PaymentNone    PaymentStatus = ""
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// WizardState is the progress of one listing session. SelectedEventID and
// TicketID are the completion tokens gating the ticket and payment steps.
type WizardState struct {
	ActiveStep      Step          `json:"active_step"`
	SelectedEventID *string       `json:"selected_event_id"`
	TicketID        *string       `json:"ticket_id"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	ListedPrice     int64         `json:"listed_price,omitempty"`
	ListedQuantity  int           `json:"listed_quantity,omitempty"`
}

func NewWizardState() WizardState {
	return WizardState{ActiveStep: StepEvent}
}

// Consistent reports whether the step is backed by the tokens it requires.
func (s WizardState) Consistent() bool {
	switch s.ActiveStep {
	case StepEvent:
		return true
	case StepTicket:
		return s.SelectedEventID != nil
	case StepPayment:
		return s.SelectedEventID != nil && s.TicketID != nil
	default:
		return false
	}
}

// Terminal is true once the payment frame has reported success.
func (s WizardState) Terminal() bool {
	return s.PaymentStatus == PaymentSuccess
}

// TabRecord is what the active-tab key holds: the step plus the payment-step
// data that has no draft of its own.
type TabRecord struct {
	Step           Step          `json:"step"`
	TicketID       *string       `json:"ticket_id,omitempty"`
	PaymentStatus  PaymentStatus `json:"payment_status,omitempty"`
	ListedPrice    int64         `json:"listed_price,omitempty"`
	ListedQuantity int           `json:"listed_quantity,omitempty"`
}
