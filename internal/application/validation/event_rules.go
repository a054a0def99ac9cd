package validation

import (
	"strings"

	"github.com/tixflow/listing-service/internal/domain"
)

const (
	EventName         FieldID = "name"
	EventCover        FieldID = "cover"
	EventLocation     FieldID = "location"
	EventCategory     FieldID = "category"
	EventTime         FieldID = "time"
	EventIntroduction FieldID = "introduction"
	EventDescription  FieldID = "description"
)

var EventFields = []FieldID{
	EventName, EventCover, EventLocation, EventCategory, EventTime, EventIntroduction, EventDescription,
}

const (
	msgEventName         = "Vui lòng nhập Tên sự kiện"
	msgEventCover        = "Vui lòng tải lên Hình ảnh sự kiện"
	msgEventLocation     = "Vui lòng nhập Địa điểm"
	msgEventCategory     = "Vui lòng chọn Thể loại sự kiện"
	msgEventTime         = "Vui lòng nhập Thời gian sự kiện"
	msgEventTimeFormat   = "Thời gian sự kiện không hợp lệ"
	msgEventIntroduction = "Vui lòng nhập Giới thiệu sự kiện"
	msgEventDescription  = "Vui lòng nhập Chi tiết sự kiện"
)

var categoryTag = func() string {
	vals := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		vals = append(vals, string(c))
	}
	return "oneof=" + strings.Join(vals, " ")
}()

// EventRules are the seven required fields of the event step.
func EventRules() []Rule[domain.EventDraft] {
	return []Rule[domain.EventDraft]{
		required(EventName, func(d domain.EventDraft) string { return d.Name }, msgEventName),
		required(EventCover, func(d domain.EventDraft) string { return d.CoverURL }, msgEventCover),
		required(EventLocation, func(d domain.EventDraft) string { return d.Location }, msgEventLocation),
		{
			Field: EventCategory,
			Check: func(d domain.EventDraft) string {
				if !satisfies(string(d.Category), "required,"+categoryTag) {
					return msgEventCategory
				}
				return ""
			},
		},
		{
			Field: EventTime,
			Check: func(d domain.EventDraft) string {
				v := strings.TrimSpace(d.Time)
				if !satisfies(v, "required") {
					return msgEventTime
				}
				if !satisfies(v, "datetime=2006-01-02T15:04:05Z07:00") {
					return msgEventTimeFormat
				}
				return ""
			},
		},
		required(EventIntroduction, func(d domain.EventDraft) string { return d.Introduction }, msgEventIntroduction),
		required(EventDescription, func(d domain.EventDraft) string { return d.Description }, msgEventDescription),
	}
}
