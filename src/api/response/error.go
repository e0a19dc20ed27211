package response

import "net/http"

// Error envelope with a stable code clients can switch on
type Error struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func NewError(status int, err error) *Error {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
	}
	return &Error{Error: message, Code: errorCode(status)}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "ledger_bad_request"
	case http.StatusUnauthorized:
		return "ledger_auth_missing"
	case http.StatusForbidden:
		return "ledger_auth_forbidden"
	case http.StatusNotFound:
		return "ledger_not_found"
	case http.StatusConflict:
		return "ledger_pending_limit"
	case http.StatusRequestEntityTooLarge:
		return "ledger_preimage_too_large"
	case http.StatusTooManyRequests:
		return "ledger_rate_limit"
	}
	return "ledger_internal"
}
