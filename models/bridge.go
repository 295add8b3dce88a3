package models

// Коды ошибок моста.
const (
	CodeNoData         = "NO_DATA"
	CodeNotImplemented = "NOT_IMPLEMENTED"
	CodeInitError      = "INIT_ERROR"
	CodeUpdateError    = "UPDATE_ERROR"
	CodeScheduleError  = "SCHEDULE_ERROR"
	CodeClearError     = "CLEAR_ERROR"
	CodeInternalError  = "INTERNAL_ERROR"
)

// BridgeResult — Ok(value) | Err(code, message).
type BridgeResult struct {
	OK      bool        `json:"ok"`
	Value   interface{} `json:"value,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Details string      `json:"details,omitempty"`
}

func Ok(value interface{}) BridgeResult {
	return BridgeResult{OK: true, Value: value}
}

func Err(code, message string) BridgeResult {
	return BridgeResult{Code: code, Message: message}
}

func (r BridgeResult) NotImplemented() bool {
	return !r.OK && r.Code == CodeNotImplemented
}
