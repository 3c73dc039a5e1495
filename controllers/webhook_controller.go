package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"itinerary-service/models"
	"itinerary-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// WebhookParser authenticates a raw webhook request and decodes it into a
// typed Stripe event.
type WebhookParser interface {
	ParseWebhook(r *http.Request) (stripe.Event, error)
}

// FulfillmentRunner executes the payment-to-delivery pipeline for one event.
type FulfillmentRunner interface {
	HandlePaymentEvent(ctx context.Context, evt models.PaymentEvent) services.FulfillmentResult
}

type WebhookController struct {
	Stripe      WebhookParser
	Fulfillment FulfillmentRunner
	Logger      *zap.Logger
}

// StripeWebhook receives Stripe webhook notifications. Signature
// verification runs before anything else; a failure rejects the request
// outright. Once verified, the request is always acknowledged with a generic
// success body so the provider does not retry-storm, and the fulfillment
// pipeline runs as an independent task whose outcome is observational only.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	event, err := wc.Stripe.ParseWebhook(c.Request)
	if err != nil {
		wc.Logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		wc.handleCheckoutCompleted(event)
	default:
		wc.Logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (wc *WebhookController) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		wc.Logger.Error("Failed to unmarshal checkout session", zap.Error(err))
		return
	}

	email := sess.Metadata["email"]
	if email == "" {
		email = sess.CustomerEmail
	}
	if email == "" {
		wc.Logger.Warn("Checkout session has no confirmed email",
			zap.String("session_id", sess.ID),
		)
		return
	}

	evt := models.PaymentEvent{
		Type:           models.EventCheckoutCompleted,
		SessionID:      sess.ID,
		ConfirmedEmail: email,
	}

	wc.Logger.Info("Dispatching fulfillment run",
		zap.String("session_id", evt.SessionID),
		zap.String("email", evt.ConfirmedEmail),
	)

	// One independent task per notification; the HTTP response does not
	// wait for the pipeline.
	go wc.Fulfillment.HandlePaymentEvent(context.Background(), evt)
}
