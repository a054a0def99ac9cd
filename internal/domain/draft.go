package domain

import "strings"

type Category string

const (
	CategoryLiveMusic   Category = "live_music"
	CategorySports      Category = "sports"
	CategoryStageAndArt Category = "stage_and_art"
	CategoryOther       Category = "other"
)

var Categories = []Category{CategoryLiveMusic, CategorySports, CategoryStageAndArt, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// EventDraft is the step-one form. CoverURL stays empty until an upload
// succeeds.
type EventDraft struct {
	Name         string   `json:"name"`
	CoverURL     string   `json:"cover_url"`
	Location     string   `json:"location"`
	Category     Category `json:"category"`
	Time         string   `json:"time"`
	Introduction string   `json:"introduction"`
	Description  string   `json:"description"`
	Condition    string   `json:"condition"`
}

func NewEventDraft() EventDraft {
	return EventDraft{}
}

func (d EventDraft) IsComplete() bool {
	for _, v := range []string{d.Name, d.CoverURL, d.Location, string(d.Category), d.Time, d.Introduction, d.Description} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type TicketDraft struct {
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	MinInOrder  int    `json:"min_in_order"`
	MaxInOrder  int    `json:"max_in_order"`
}

func NewTicketDraft() TicketDraft {
	return TicketDraft{
		Quantity:   1,
		MinInOrder: 1,
		MaxInOrder: 1,
	}
}

// EventDraftPatch carries a partial edit; nil fields are left alone.
type EventDraftPatch struct {
	Name         *string   `json:"name,omitempty"`
	CoverURL     *string   `json:"cover_url,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Category     *Category `json:"category,omitempty"`
	Time         *string   `json:"time,omitempty"`
	Introduction *string   `json:"introduction,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Condition    *string   `json:"condition,omitempty"`
}

func (d *EventDraft) Apply(p EventDraftPatch) {
	setStr(&d.Name, p.Name)
	setStr(&d.CoverURL, p.CoverURL)
	setStr(&d.Location, p.Location)
	if p.Category != nil {
		d.Category = *p.Category
	}
	setStr(&d.Time, p.Time)
	setStr(&d.Introduction, p.Introduction)
	setStr(&d.Description, p.Description)
	setStr(&d.Condition, p.Condition)
}

type TicketDraftPatch struct {
	Name        *string `json:"name,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	MinInOrder  *int    `json:"min_in_order,omitempty"`
	MaxInOrder  *int    `json:"max_in_order,omitempty"`
}

func (d *TicketDraft) Apply(p TicketDraftPatch) {
	setStr(&d.Name, p.Name)
	setStr(&d.ImageURL, p.ImageURL)
	setStr(&d.Description, p.Description)
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.Quantity != nil {
		d.Quantity = *p.Quantity
	}
	if p.MinInOrder != nil {
		d.MinInOrder = *p.MinInOrder
	}
	if p.MaxInOrder != nil {
		d.MaxInOrder = *p.MaxInOrder
	}
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
