// Package types holds the JSON envelopes every API response uses. The
// dashboard always receives either {"data": ...} or {"error": {...}}.
package types

// SuccessEnvelope wraps successful response payloads.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a typed application error. Retryable
// tells the caller the failure is transient and the request may be
// safely resent.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError for failed responses.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
