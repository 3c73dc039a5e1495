package controllers

import (
	"net/http"

	"itinerary-service/metrics"
	"itinerary-service/models"
	"itinerary-service/store"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// CheckoutSessionCreator creates a hosted payment session for one purchase.
type CheckoutSessionCreator interface {
	CreateCheckoutSession(form models.ItineraryForm) (*stripe.CheckoutSession, error)
}

type CheckoutController struct {
	Stripe CheckoutSessionCreator
	Store  *store.IntakeStore
	Logger *zap.Logger
}

// CreateCheckout validates the itinerary form, creates a Stripe checkout
// session and parks the form data under the session ID until the payment
// webhook arrives. A missing or invalid email is rejected before any
// provider call.
func (cc *CheckoutController) CreateCheckout(c *gin.Context) {
	var form models.ItineraryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := cc.Stripe.CreateCheckoutSession(form)
	if err != nil {
		cc.Logger.Error("Stripe session creation failed",
			zap.String("city", form.City),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe session creation failed"})
		return
	}

	cc.Store.Put(sess.ID, form)
	metrics.CheckoutSessionsCreated.Inc()

	cc.Logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("city", form.City),
	)

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}
