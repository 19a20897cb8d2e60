package homework

import (
	"fmt"
	"net/http"
)

// Error kinds. They double as log fields and metric labels.
const (
	KindTransport     = "transport"
	KindRemoteStatus  = "remote_status"
	KindSchema        = "schema"
	KindMissingField  = "missing_field"
	KindUnknownStatus = "unknown_status"
)

// TransportError means the status fetch did not produce a usable body:
// connection/DNS/timeout failures and malformed payloads.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport: " + e.Op
	}
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Kind() string  { return KindTransport }

// RemoteStatusError is returned for any non-200 answer of the status API.
type RemoteStatusError struct {
	Code int
}

func (e *RemoteStatusError) Error() string {
	text := http.StatusText(e.Code)
	if text == "" {
		return fmt.Sprintf("status api answered HTTP %d", e.Code)
	}
	return fmt.Sprintf("status api answered HTTP %d (%s)", e.Code, text)
}

func (e *RemoteStatusError) Kind() string { return KindRemoteStatus }

// SchemaError reports a response whose shape does not match the API contract.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string { return "unexpected response shape: " + e.Reason }
func (e *SchemaError) Kind() string  { return KindSchema }

// MissingFieldError reports a homework record without a required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("homework record has no %q", e.Field)
}

func (e *MissingFieldError) Kind() string { return KindMissingField }

// UnknownStatusError reports a status outside the verdict table.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown homework status %q", e.Status)
}

func (e *UnknownStatusError) Kind() string { return KindUnknownStatus }
