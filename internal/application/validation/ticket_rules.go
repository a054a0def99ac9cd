package validation

import "github.com/tixflow/listing-service/internal/domain"

const (
	TicketName        FieldID = "name"
	TicketImage       FieldID = "image"
	TicketDescription FieldID = "description"
	TicketPrice       FieldID = "price"
	TicketQuantity    FieldID = "quantity"
	TicketOrderRange  FieldID = "order_range"
)

var TicketFields = []FieldID{
	TicketName, TicketImage, TicketDescription, TicketPrice, TicketQuantity, TicketOrderRange,
}

const (
	msgTicketName        = "Vui lòng nhập Tên vé"
	msgTicketImage       = "Vui lòng tải lên Hình ảnh vé"
	msgTicketDescription = "Vui lòng nhập Mô tả vé"
	msgTicketPrice       = "Giá vé phải lớn hơn 0"
	msgTicketQuantity    = "Số lượng vé phải lớn hơn hoặc bằng 1"
	msgTicketMinInOrder  = "Số vé tối thiểu mỗi đơn phải lớn hơn hoặc bằng 1"
	msgTicketOrderRange  = "Số vé tối thiểu mỗi đơn không được lớn hơn số vé tối đa"
)

func TicketRules() []Rule[domain.TicketDraft] {
	return []Rule[domain.TicketDraft]{
		required(TicketName, func(d domain.TicketDraft) string { return d.Name }, msgTicketName),
		required(TicketImage, func(d domain.TicketDraft) string { return d.ImageURL }, msgTicketImage),
		required(TicketDescription, func(d domain.TicketDraft) string { return d.Description }, msgTicketDescription),
		{
			Field: TicketPrice,
			Check: func(d domain.TicketDraft) string {
				if !satisfies(d.Price, "gt=0") {
					return msgTicketPrice
				}
				return ""
			},
		},
		{
			Field: TicketQuantity,
			Check: func(d domain.TicketDraft) string {
				if !satisfies(d.Quantity, "gte=1") {
					return msgTicketQuantity
				}
				return ""
			},
		},
		{
			Field: TicketOrderRange,
			Check: func(d domain.TicketDraft) string {
				if !satisfies(d.MinInOrder, "gte=1") {
					return msgTicketMinInOrder
				}
				if validate.VarWithValue(d.MinInOrder, d.MaxInOrder, "ltefield") != nil {
					return msgTicketOrderRange
				}
				return ""
			},
		},
	}
}
