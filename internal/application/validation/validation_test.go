package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tixflow/listing-service/internal/domain"
)

func validEvent() domain.EventDraft {
	return domain.EventDraft{
		Name:         "Đêm nhạc Trịnh",
		CoverURL:     "https://cdn.tixflow.net/images/cover.png",
		Location:     "Nhà hát Hòa Bình",
		Category:     domain.CategoryLiveMusic,
		Time:         "2026-12-24T20:00:00+07:00",
		Introduction: "Giới thiệu ngắn",
		Description:  "Chi tiết chương trình",
	}
}

func validTicket() domain.TicketDraft {
	return domain.TicketDraft{
		Name:        "Vé VIP",
		ImageURL:    "https://cdn.tixflow.net/images/ticket.png",
		Description: "Hàng ghế đầu",
		Price:       1_500_000,
		Quantity:    3,
		MinInOrder:  1,
		MaxInOrder:  2,
	}
}

func TestValidate_EventRules(t *testing.T) {
	t.Run("valid_draft_has_no_errors", func(t *testing.T) {
		assert.Empty(t, Validate(validEvent(), EventRules()))
	})

	t.Run("missing_location_and_introduction_yields_two_messages", func(t *testing.T) {
		d := validEvent()
		d.Location = ""
		d.Introduction = ""

		errs := Validate(d, EventRules())
		assert.Equal(t, []string{msgEventLocation, msgEventIntroduction}, errs)
	})

	t.Run("zero_value_fails_every_rule_in_order", func(t *testing.T) {
		errs := Validate(domain.EventDraft{}, EventRules())
		assert.Equal(t, []string{
			msgEventName, msgEventCover, msgEventLocation, msgEventCategory,
			msgEventTime, msgEventIntroduction, msgEventDescription,
		}, errs)
	})

	t.Run("whitespace_is_blank", func(t *testing.T) {
		d := validEvent()
		d.Name = "  \t"
		assert.Equal(t, []string{msgEventName}, Validate(d, EventRules()))
	})

	t.Run("unknown_category", func(t *testing.T) {
		d := validEvent()
		d.Category = "concert"
		assert.Equal(t, []string{msgEventCategory}, Validate(d, EventRules()))
	})

	t.Run("unparseable_time", func(t *testing.T) {
		d := validEvent()
		d.Time = "24/12/2026 20:00"
		assert.Equal(t, []string{msgEventTimeFormat}, Validate(d, EventRules()))
	})

	t.Run("condition_is_optional", func(t *testing.T) {
		d := validEvent()
		d.Condition = ""
		assert.Empty(t, Validate(d, EventRules()))
	})
}

func TestValidate_TicketRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.TicketDraft)
		want   []string
	}{
		{name: "valid", mutate: func(*domain.TicketDraft) {}, want: []string{}},
		{name: "zero_price", mutate: func(d *domain.TicketDraft) { d.Price = 0 }, want: []string{msgTicketPrice}},
		{name: "negative_price", mutate: func(d *domain.TicketDraft) { d.Price = -5 }, want: []string{msgTicketPrice}},
		{name: "zero_quantity", mutate: func(d *domain.TicketDraft) { d.Quantity = 0 }, want: []string{msgTicketQuantity}},
		{name: "min_above_max", mutate: func(d *domain.TicketDraft) { d.MinInOrder, d.MaxInOrder = 3, 2 }, want: []string{msgTicketOrderRange}},
		{name: "min_equals_max", mutate: func(d *domain.TicketDraft) { d.MinInOrder, d.MaxInOrder = 2, 2 }, want: []string{}},
		{name: "min_zero", mutate: func(d *domain.TicketDraft) { d.MinInOrder = 0 }, want: []string{msgTicketMinInOrder}},
		{
			name:   "missing_text_fields",
			mutate: func(d *domain.TicketDraft) { d.Name, d.ImageURL, d.Description = "", "", "" },
			want:   []string{msgTicketName, msgTicketImage, msgTicketDescription},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validTicket()
			tt.mutate(&d)
			assert.Equal(t, tt.want, Validate(d, TicketRules()))
		})
	}
}

func TestRuleSets_CoverClosedFieldSets(t *testing.T) {
	assert.Equal(t, EventFields, Fields(EventRules()))
	assert.Equal(t, TicketFields, Fields(TicketRules()))
}

func TestValidate_SkipsNilChecks(t *testing.T) {
	rules := []Rule[int]{
		{Field: "a"},
		{Field: "b", Check: func(v int) string {
			if v < 0 {
				return "negative"
			}
			return ""
		}},
	}
	assert.Equal(t, []string{"negative"}, Validate(-1, rules))
}
