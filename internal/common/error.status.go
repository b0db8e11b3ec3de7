package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusAccepted  = 202 // Yêu cầu được chấp nhận
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest         = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized       = 401 // Chưa xác thực
	StatusForbidden          = 403 // Không có quyền truy cập
	StatusNotFound           = 404 // Không tìm thấy tài nguyên
	StatusConflict           = 409 // Xung đột dữ liệu
	StatusGone               = 410 // Tài nguyên không còn tồn tại
	StatusPreconditionFailed = 412 // Điều kiện tiên quyết không thỏa mãn
	StatusUnprocessable      = 422 // Dữ liệu hợp lệ nhưng không xử lý được
	StatusTooManyRequests    = 429 // Quá nhiều yêu cầu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusBadGateway          = 502 // Gateway không hợp lệ
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// Response Messages
const (
	MsgSuccess = "Thao tác thành công"
	MsgCreated = "Tạo mới thành công"

	MsgBadRequest         = "Yêu cầu không hợp lệ"
	MsgNotFound           = "Không tìm thấy tài nguyên"
	MsgConflict           = "Xung đột dữ liệu"
	MsgInternalError      = "Lỗi hệ thống"
	MsgServiceUnavailable = "Dịch vụ không khả dụng"

	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
	MsgInvalidFormat   = "Định dạng dữ liệu không hợp lệ"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: STK_001)
	Category    string // Phân loại lỗi (ví dụ: Stock)
	SubCategory string // Phân loại con (ví dụ: Ceiling)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidation = ErrorCode{
		Code:        "VAL",
		Category:    "Validation",
		SubCategory: "General",
		Description: "Lỗi xác thực dữ liệu chung",
	}

	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	// Stock Errors (STK_xxx)
	ErrCodeStock = ErrorCode{
		Code:        "STK",
		Category:    "Stock",
		SubCategory: "General",
		Description: "Lỗi tồn kho chung",
	}

	ErrCodeStockCeiling = ErrorCode{
		Code:        "STK_001",
		Category:    "Stock",
		SubCategory: "Ceiling",
		Description: "Số lượng yêu cầu vượt trần tồn kho hiệu dụng",
	}

	ErrCodeStockEmpty = ErrorCode{
		Code:        "STK_002",
		Category:    "Stock",
		SubCategory: "Empty",
		Description: "Tồn kho đã hết",
	}

	// Checkout Errors (CHK_xxx)
	ErrCodeCheckout = ErrorCode{
		Code:        "CHK",
		Category:    "Checkout",
		SubCategory: "General",
		Description: "Lỗi quy trình đặt hàng chung",
	}

	ErrCodeCheckoutDelivery = ErrorCode{
		Code:        "CHK_001",
		Category:    "Checkout",
		SubCategory: "Delivery",
		Description: "Hình thức nhận hàng không khả dụng",
	}

	ErrCodeCheckoutLimit = ErrorCode{
		Code:        "CHK_002",
		Category:    "Checkout",
		SubCategory: "OrderLimit",
		Description: "Cửa hàng đã đạt giới hạn đơn hàng trong ngày",
	}

	ErrCodeCheckoutPayment = ErrorCode{
		Code:        "CHK_003",
		Category:    "Checkout",
		SubCategory: "Payment",
		Description: "Lỗi tạo phiên thanh toán online",
	}

	ErrCodeCheckoutOrder = ErrorCode{
		Code:        "CHK_004",
		Category:    "Checkout",
		SubCategory: "Order",
		Description: "Lỗi tạo đơn hàng",
	}

	ErrCodeCheckoutStore = ErrorCode{
		Code:        "CHK_005",
		Category:    "Checkout",
		SubCategory: "Store",
		Description: "Cửa hàng không nhận đơn (đóng cửa hoặc tạm dừng)",
	}

	// Business Logic Errors (BIZ_xxx)
	ErrCodeBusiness = ErrorCode{
		Code:        "BIZ",
		Category:    "Business",
		SubCategory: "General",
		Description: "Lỗi logic nghiệp vụ chung",
	}

	ErrCodeBusinessState = ErrorCode{
		Code:        "BIZ_001",
		Category:    "Business",
		SubCategory: "State",
		Description: "Lỗi trạng thái nghiệp vụ",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra error có cùng mã lỗi với target không (hỗ trợ errors.Is).
// Hai *Error được coi là cùng một lỗi khi trùng Code.Code — Details (shortfall,
// category name, ...) không tham gia so sánh.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code
	}
	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound   = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)

	// Stock Errors — Details luôn mang StockShortfall để UI hiển thị mức thiếu hụt
	ErrStockInsufficient = NewError(ErrCodeStockCeiling, "Số lượng yêu cầu vượt quá tồn kho khả dụng", StatusConflict, nil)
	ErrStockEmpty        = NewError(ErrCodeStockEmpty, "Sản phẩm đã hết hàng", StatusConflict, nil)

	// Checkout Errors
	ErrDeliveryTypeDisabled  = NewError(ErrCodeCheckoutDelivery, "Hình thức nhận hàng đã bị cửa hàng tắt", StatusPreconditionFailed, nil)
	ErrOrderLimitReached     = NewError(ErrCodeCheckoutLimit, "Cửa hàng đã đạt giới hạn đơn hàng trong ngày", StatusTooManyRequests, nil)
	ErrPaymentPreference     = NewError(ErrCodeCheckoutPayment, "Không tạo được phiên thanh toán online", StatusBadGateway, nil)
	ErrOrderCreationFailed   = NewError(ErrCodeCheckoutOrder, "Không tạo được đơn hàng", StatusInternalServerError, nil)
	ErrStoreClosed           = NewError(ErrCodeCheckoutStore, "Cửa hàng đang đóng cửa", StatusPreconditionFailed, nil)
	ErrStorePaused           = NewError(ErrCodeCheckoutStore, "Cửa hàng đang tạm dừng nhận đơn", StatusPreconditionFailed, nil)

	// Business Logic Errors
	ErrInvalidState = NewError(ErrCodeBusinessState, "Trạng thái không hợp lệ", StatusBadRequest, nil)
)

// StockShortfall mô tả mức thiếu hụt tồn kho, gắn vào Details của lỗi STK_xxx.
// Scope là "product" hoặc tên danh mục đang ràng buộc trần.
type StockShortfall struct {
	Scope     string `json:"scope"`     // Phạm vi ràng buộc: "product" hoặc tên danh mục
	Requested int64  `json:"requested"` // Số lượng yêu cầu
	Available int64  `json:"available"` // Số lượng còn có thể thêm (trần − đã có trong giỏ)
}

// NewStockInsufficientError tạo lỗi StockInsufficient kèm chi tiết thiếu hụt.
// Available = 0 trả về ErrCodeStockEmpty để UI phân biệt "hết hẳn" với "thiếu một phần".
func NewStockInsufficientError(scope string, requested, available int64) error {
	detail := StockShortfall{Scope: scope, Requested: requested, Available: available}
	if available <= 0 {
		return NewError(ErrCodeStockEmpty, "Sản phẩm đã hết hàng", StatusConflict, detail)
	}
	return NewError(ErrCodeStockCeiling, "Số lượng yêu cầu vượt quá tồn kho khả dụng", StatusConflict, detail)
}

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// ErrNotFound đã được convert ở tầng dưới — giữ nguyên
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return NewError(ErrCodeDatabaseQuery, MsgConflict, StatusConflict, err)
	}
	if mongo.IsNetworkError(err) {
		return NewError(ErrCodeDatabaseConnection, MsgServiceUnavailable, StatusServiceUnavailable, err)
	}
	if mongo.IsTimeout(err) {
		return NewError(ErrCodeDatabaseConnection, "Kết nối cơ sở dữ liệu bị timeout", StatusServiceUnavailable, err)
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return NewError(ErrCodeDatabaseQuery, MsgDatabaseError, StatusInternalServerError, err)
	}

	return NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}
