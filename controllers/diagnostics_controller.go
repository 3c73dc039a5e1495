package controllers

import (
	"fmt"
	"net/http"

	"itinerary-service/models"
	"itinerary-service/sender"
	"itinerary-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DiagnosticsController exposes ad-hoc triggers for the generation, render
// and delivery stages for operational testing. Not part of the fulfillment
// contract; these bypass payment entirely.
type DiagnosticsController struct {
	Generator services.ContentGenerator
	Renderer  services.DocumentRenderer
	Sender    sender.EmailSender
	Logger    *zap.Logger
}

// TestGenerate runs only the content generator and returns the itinerary.
func (dc *DiagnosticsController) TestGenerate(c *gin.Context) {
	var form models.ItineraryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itinerary := dc.Generator.Generate(c.Request.Context(), form)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "itinerary": itinerary})
}

// TestRender runs generation and rendering and returns the PDF bytes.
func (dc *DiagnosticsController) TestRender(c *gin.Context) {
	var form models.ItineraryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itinerary := dc.Generator.Generate(c.Request.Context(), form)
	doc, err := dc.Renderer.Render(c.Request.Context(), itinerary)
	if err != nil {
		dc.Logger.Error("Test render failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// TestEmail runs the full generate-render-deliver sequence synchronously.
func (dc *DiagnosticsController) TestEmail(c *gin.Context) {
	var form models.ItineraryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	itinerary := dc.Generator.Generate(ctx, form)

	doc, err := dc.Renderer.Render(ctx, itinerary)
	if err != nil {
		dc.Logger.Error("Test render failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if _, err := dc.Sender.SendItinerary(ctx, form.Email, doc, itinerary); err != nil {
		dc.Logger.Error("Test email failed", zap.String("email", form.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Email sent"})
}
