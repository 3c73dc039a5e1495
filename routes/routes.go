package routes

import (
	"time"

	"itinerary-service/controllers"
	"itinerary-service/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(
	r *gin.Engine,
	cc *controllers.CheckoutController,
	wc *controllers.WebhookController,
	hc *controllers.HealthController,
	dc *controllers.DiagnosticsController,
) {
	r.GET("/health", hc.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 1 req/s with small bursts is generous for a checkout form.
	checkoutLimiter := middleware.NewRateLimiter(1, 5, 10*time.Minute)
	r.POST("/checkout", checkoutLimiter.Middleware(), cc.CreateCheckout)

	// Stripe webhook: raw body, signature-verified in the controller.
	r.POST("/stripe/webhook", wc.StripeWebhook)

	test := r.Group("/test")
	test.POST("/generate", dc.TestGenerate)
	test.POST("/render", dc.TestRender)
	test.POST("/email", dc.TestEmail)
}
