package services

import "errors"

// Pipeline error taxonomy. Signature failures never reach this package; they
// are rejected at the webhook controller before any state transition.
var (
	// ErrSessionNotFound marks a payment event whose session has no pending
	// form data (already consumed or never created). The run is a no-op.
	ErrSessionNotFound = errors.New("no pending data for session")

	// ErrRenderFailure marks a failed PDF render. Fatal to the run.
	ErrRenderFailure = errors.New("render failure")

	// ErrDeliveryFailure marks a failed email dispatch. Fatal to the run.
	ErrDeliveryFailure = errors.New("delivery failure")
)
