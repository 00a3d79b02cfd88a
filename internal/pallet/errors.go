package pallet

import (
	"errors"
	"fmt"
)

// ErrNoBarcode means the operator cancelled the prompt or supplied nothing.
var ErrNoBarcode = errors.New("no barcode supplied")

// TransportError wraps a failed RPC call (network, timeout, HTTP or JSON-RPC error).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pallet update request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError is a reply whose success flag is false.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("pallet update rejected: %s", e.Message)
}

// Error kinds, as logged and journaled.
const (
	KindNone        = ""
	KindCancelled   = "user_cancelled"
	KindTransport   = "transport_error"
	KindApplication = "application_error"
	KindUnknown     = "unknown"
)

// Kind classifies err into the workflow's error taxonomy.
func Kind(err error) string {
	if err == nil {
		return KindNone
	}
	var te *TransportError
	var ae *ApplicationError
	switch {
	case errors.Is(err, ErrNoBarcode):
		return KindCancelled
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &ae):
		return KindApplication
	default:
		return KindUnknown
	}
}
