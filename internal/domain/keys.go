package domain

// DraftKeys names every logical storage key the wizard reads and writes.
// It is handed to the wizard service once, at construction.
type DraftKeys struct {
	EventDraft    string
	TicketDraft   string
	SelectedEvent string
	ActiveTab     string

	// Session is the logout sentinel: its absence means the user signed out
	// elsewhere and every draft must go.
	Session string
}

func DefaultDraftKeys() DraftKeys {
	return DraftKeys{
		EventDraft:    "create_ticket_event_draft",
		TicketDraft:   "create_ticket_data_draft",
		SelectedEvent: "create_ticket_selected_event",
		ActiveTab:     "create_ticket_active_tab",
		Session:       "create_ticket_session",
	}
}

// Drafts returns the four keys purged on completion or logout.
func (k DraftKeys) Drafts() []string {
	return []string{k.EventDraft, k.TicketDraft, k.SelectedEvent, k.ActiveTab}
}
