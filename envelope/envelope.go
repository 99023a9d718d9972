package envelope

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape shared by every validation result and gate
// response. Success carries Data (and optionally TotalCount); failure
// carries ErrorCode and Message.
type Envelope struct {
	// Data is the success payload.
	Data any `json:"data,omitempty"`

	// TotalCount is the optional total for collection payloads.
	TotalCount *int64 `json:"totalCount,omitempty"`

	// ErrorCode is the HTTP-style error code (401, 403, 500).
	// Zero means success.
	ErrorCode int `json:"errorCode,omitempty"`

	// Message is the user-facing failure message.
	Message string `json:"message,omitempty"`
}

// Success creates a success envelope wrapping the given payload.
func Success(data any) Envelope {
	return Envelope{Data: data}
}

// SuccessWithCount creates a success envelope for a collection payload.
func SuccessWithCount(data any, totalCount int64) Envelope {
	return Envelope{Data: data, TotalCount: &totalCount}
}

// Failure creates a failure envelope with the given code and message.
func Failure(code int, message string) Envelope {
	return Envelope{ErrorCode: code, Message: message}
}

// IsFailure reports whether the envelope holds the failure state.
func (e Envelope) IsFailure() bool {
	return e.ErrorCode != 0
}

// Write serializes the envelope as JSON with the given HTTP status.
func Write(w http.ResponseWriter, status int, e Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}

// WriteFailure writes a failure envelope whose HTTP status matches the
// error code carried in the body.
func WriteFailure(w http.ResponseWriter, code int, message string) {
	Write(w, code, Failure(code, message))
}
