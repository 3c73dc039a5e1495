package models

// Payment event types forwarded to the fulfillment pipeline. Stripe emits
// many event types; only checkout completion triggers fulfillment, the rest
// are acknowledged and dropped at the webhook controller.
const (
	EventCheckoutCompleted = "checkout_completed"
	EventOther             = "other"
)

// PaymentEvent is the typed result of a signature-verified Stripe webhook
// payload. It is consumed exactly once by the orchestrator and never
// persisted.
type PaymentEvent struct {
	Type           string `json:"type"`
	SessionID      string `json:"session_id"`      // Stripe checkout session ID
	ConfirmedEmail string `json:"confirmed_email"` // from session metadata
}
