package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"itinerary-service/config"
	"itinerary-service/controllers"
	"itinerary-service/logger"
	"itinerary-service/routes"
	"itinerary-service/sender"
	"itinerary-service/services"
	"itinerary-service/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const janitorInterval = 10 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[ItineraryService] Failed to load config: ", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[ItineraryService] Failed to initialize logger: ", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Collaborators, injected explicitly; no hidden process-wide state.
	intake := store.NewIntakeStore(cfg.IntakeTTL)
	go intake.Run(ctx, janitorInterval)

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.FrontendURL)
	generator := services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.StageTimeout, zlog)
	renderer := services.NewPDFRenderer(cfg.ChromePath, cfg.StageTimeout, zlog)
	emailSender := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)

	fulfillment := services.NewFulfillmentService(intake, generator, renderer, emailSender, services.FulfillmentConfig{
		StageTimeout: cfg.StageTimeout,
		MaxRetries:   cfg.MaxRetries,
	}, zlog)

	if !cfg.HasOpenAI() {
		zlog.Warn("OPENAI_API_KEY not set; all itineraries will use the fallback plan")
	}
	if !cfg.HasEmail() {
		zlog.Warn("SMTP transport not fully configured; deliveries will fail")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zlog))
	r.Use(cors.Default())

	routes.RegisterRoutes(r,
		&controllers.CheckoutController{Stripe: stripeSvc, Store: intake, Logger: zlog},
		&controllers.WebhookController{Stripe: stripeSvc, Fulfillment: fulfillment, Logger: zlog},
		&controllers.HealthController{Cfg: cfg},
		&controllers.DiagnosticsController{Generator: generator, Renderer: renderer, Sender: emailSender, Logger: zlog},
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("Itinerary service running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
