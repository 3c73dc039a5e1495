package controllers

import (
	"net/http"
	"time"

	"itinerary-service/config"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Cfg *config.Config
}

// Health reports service liveness and which external providers are
// configured. The service runs with providers missing: generation degrades
// to the fallback itinerary and delivery fails as a logged run.
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"stripe": hc.Cfg.StripeSecretKey != "",
			"openai": hc.Cfg.HasOpenAI(),
			"email":  hc.Cfg.HasEmail(),
		},
	})
}
