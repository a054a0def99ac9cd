package domain

// User-facing messages. Raw error codes never reach the end user.
const (
	MsgFormInvalid         = "Vui lòng kiểm tra lại thông tin"
	MsgUploadFailed        = "Tải ảnh lên thất bại, vui lòng thử lại"
	MsgFileMissing         = "Vui lòng chọn file ảnh"
	MsgFileTooLarge        = "Kích thước file không được vượt quá 5MB"
	MsgFileTypeNotAllowed  = "Chỉ chấp nhận file ảnh định dạng JPG, PNG, WebP hoặc HEIC"
	MsgTransitionInFlight  = "Yêu cầu trước đó đang được xử lý, vui lòng đợi"
	MsgSessionEnded        = "Phiên đăng nhập đã kết thúc, vui lòng đăng nhập lại"
	MsgLoginRequired       = "Vui lòng đăng nhập để tiếp tục"
	MsgEventRequired       = "Vui lòng chọn hoặc tạo sự kiện trước"
	MsgTicketRequired      = "Vui lòng tạo vé trước khi thanh toán"
	MsgNoStepBack          = "Không thể quay lại bước trước"
	MsgCreateEventFailed   = "Tạo sự kiện thất bại"
	MsgCreateTicketFailed  = "Tạo vé thất bại"
	MsgCreateOrderFailed   = "Tạo yêu cầu thanh toán thất bại"
	MsgLoadEventsFailed    = "Lỗi khi tải danh sách sự kiện"
	MsgLoadTicketFailed    = "Lỗi khi tải thông tin vé"
	MsgUpdateTicketFailed  = "Cập nhật trạng thái vé thất bại"
	MsgGatewayTimeout      = "Máy chủ phản hồi quá lâu, vui lòng thử lại"
	MsgGatewayUnavailable  = "Không thể kết nối tới máy chủ, vui lòng thử lại"
	MsgTicketNotFound      = "Không tìm thấy vé"
	MsgInvalidRequest      = "Yêu cầu không hợp lệ"
	MsgInternal            = "Đã có lỗi xảy ra, vui lòng thử lại"
	MsgLoginFailed         = "Email hoặc mật khẩu không đúng"
	MsgRegisterFailed      = "Đăng ký tài khoản thất bại"
	MsgLoadProfileFailed   = "Lỗi khi tải thông tin tài khoản"
	MsgTicketStatusInvalid = "Trạng thái vé không hợp lệ"
	MsgPaymentNotRequested = "Vui lòng tạo yêu cầu thanh toán trước"
	MsgEventNotFound       = "Không tìm thấy sự kiện"
	MsgLoadEventFailed     = "Lỗi khi tải thông tin sự kiện"
	MsgBuyTicketFailed     = "Đặt mua vé thất bại"
	MsgEditTicketFailed    = "Cập nhật vé thất bại"
	MsgLoadMyTicketsFailed = "Lỗi khi tải danh sách vé của bạn"
	MsgTicketNotForSale    = "Vé hiện không được mở bán"
	MsgQuantityOutOfRange  = "Số lượng vé không nằm trong giới hạn cho phép"
	MsgNoPaymentLink       = "Không nhận được link thanh toán"
)
