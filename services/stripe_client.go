package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"itinerary-service/models"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// Fixed product: one $1 line item per itinerary purchase.
const (
	itineraryPriceCents = 100
	itineraryCurrency   = "usd"
	itineraryProduct    = "Custom Day Itinerary"
)

type StripeService struct {
	SecretKey  string
	WebhookKey string
	SuccessURL string
	CancelURL  string
}

func NewStripeService(secretKey, webhookKey, frontendURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		SecretKey:  secretKey,
		WebhookKey: webhookKey,
		SuccessURL: frontendURL + "/thank-you",
		CancelURL:  frontendURL + "/",
	}
}

// CreateCheckoutSession creates a hosted Stripe Checkout session for one
// itinerary purchase. The requester's email rides along in the session
// metadata so the webhook can confirm it later.
func (s *StripeService) CreateCheckoutSession(form models.ItineraryForm) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(form.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(itineraryCurrency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(itineraryProduct),
						Description: stripe.String(fmt.Sprintf("A personalized day plan for %s", form.City)),
					},
					UnitAmount: stripe.Int64(itineraryPriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.SuccessURL),
		CancelURL:  stripe.String(s.CancelURL),
	}
	params.AddMetadata("email", form.Email)

	return session.New(params)
}

// ParseWebhook verifies the Stripe-Signature header against the raw request
// body and decodes the payload into a typed event. This is the single trust
// boundary between Stripe and the pipeline; callers must reject the request
// on error without processing the body further.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
