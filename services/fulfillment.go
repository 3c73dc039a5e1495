package services

import (
	"context"
	"time"

	"itinerary-service/metrics"
	"itinerary-service/models"
	"itinerary-service/sender"
	"itinerary-service/store"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is a fulfillment run's position in the pipeline state machine.
type State string

const (
	StateAwaitingPayment State = "awaiting_payment"
	StateVerified        State = "verified"
	StateGenerating      State = "generating"
	StateRendering       State = "rendering"
	StateDelivering      State = "delivering"
	StateDone            State = "done"
	// StateFailed is terminal, reached from rendering or delivering.
	StateFailed State = "failed"
	// StateNoPending is the logged no-op terminal for events whose session
	// has no pending form data (duplicate delivery or unknown session).
	StateNoPending State = "no_pending"
	// StateSkipped covers events that never enter the pipeline: wrong event
	// type or missing confirmed email.
	StateSkipped State = "skipped"
)

// Stage names the pipeline stage a run failed in.
type Stage string

const (
	StageRender  Stage = "render"
	StageDeliver Stage = "deliver"
)

// FulfillmentResult is the terminal record of one run.
type FulfillmentResult struct {
	RunID       string
	SessionID   string
	Email       string
	State       State
	FailedStage Stage
	Err         error
}

type FulfillmentConfig struct {
	StageTimeout  time.Duration // deadline per stage attempt
	MaxRetries    uint64        // extra attempts for render and delivery
	RetryInterval time.Duration // initial backoff interval; 0 keeps the default
}

// FulfillmentService sequences verify -> generate -> render -> deliver for
// one payment confirmation. Taking the form data out of the intake store at
// the verified transition makes the whole run at-most-once per session even
// when Stripe redelivers the notification.
type FulfillmentService struct {
	store     *store.IntakeStore
	generator ContentGenerator
	renderer  DocumentRenderer
	sender    sender.EmailSender
	logger    *zap.Logger
	cfg       FulfillmentConfig
}

func NewFulfillmentService(
	intake *store.IntakeStore,
	generator ContentGenerator,
	renderer DocumentRenderer,
	emailSender sender.EmailSender,
	cfg FulfillmentConfig,
	logger *zap.Logger,
) *FulfillmentService {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 120 * time.Second
	}
	return &FulfillmentService{
		store:     intake,
		generator: generator,
		renderer:  renderer,
		sender:    emailSender,
		logger:    logger,
		cfg:       cfg,
	}
}

// HandlePaymentEvent runs the pipeline for one verified payment event and
// returns its terminal result. Failures are terminal and observational only;
// the webhook handler has already acknowledged the provider by the time they
// occur.
func (s *FulfillmentService) HandlePaymentEvent(ctx context.Context, evt models.PaymentEvent) FulfillmentResult {
	runID := uuid.NewString()
	log := s.logger.With(
		zap.String("run_id", runID),
		zap.String("session_id", evt.SessionID),
	)
	result := FulfillmentResult{RunID: runID, SessionID: evt.SessionID, Email: evt.ConfirmedEmail}

	if evt.Type != models.EventCheckoutCompleted {
		log.Info("Ignoring non-checkout payment event", zap.String("event_type", evt.Type))
		result.State = StateSkipped
		return result
	}
	if evt.ConfirmedEmail == "" {
		log.Warn("Checkout completed without confirmed email; dropping event")
		result.State = StateSkipped
		return result
	}

	start := time.Now()

	form, ok := s.store.Take(evt.SessionID)
	if !ok {
		// Duplicate delivery or unknown session: already consumed, no-op.
		log.Info("No pending data for session")
		metrics.FulfillmentRuns.WithLabelValues(string(StateNoPending)).Inc()
		result.State = StateNoPending
		result.Err = ErrSessionNotFound
		return result
	}

	log.Info("Payment verified, starting fulfillment",
		zap.String("email", evt.ConfirmedEmail),
		zap.String("city", form.City),
	)

	// Generation cannot fail outward: every failure degrades to the
	// fallback itinerary inside the generator.
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	itinerary := s.generator.Generate(genCtx, form)
	cancel()

	var doc models.RenderedDocument
	err := s.retryStage(ctx, func(stageCtx context.Context) error {
		var renderErr error
		doc, renderErr = s.renderer.Render(stageCtx, itinerary)
		return renderErr
	})
	if err != nil {
		return s.fail(log, result, StageRender, err, start)
	}
	log.Info("Document rendered", zap.String("filename", doc.Filename), zap.Int("bytes", len(doc.Content)))

	err = s.retryStage(ctx, func(stageCtx context.Context) error {
		_, sendErr := s.sender.SendItinerary(stageCtx, evt.ConfirmedEmail, doc, itinerary)
		return sendErr
	})
	if err != nil {
		return s.fail(log, result, StageDeliver, err, start)
	}

	metrics.FulfillmentRuns.WithLabelValues(string(StateDone)).Inc()
	metrics.FulfillmentDuration.Observe(time.Since(start).Seconds())
	log.Info("Fulfillment complete",
		zap.String("email", evt.ConfirmedEmail),
		zap.Duration("elapsed", time.Since(start)),
	)

	result.State = StateDone
	return result
}

// retryStage runs op with a per-attempt timeout under bounded exponential
// backoff. Transient render or delivery failures are absorbed here while the
// run still holds the form data; an exhausted budget is terminal.
func (s *FulfillmentService) retryStage(ctx context.Context, op func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	if s.cfg.RetryInterval > 0 {
		b.InitialInterval = s.cfg.RetryInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.cfg.MaxRetries), ctx)

	return backoff.Retry(func() error {
		stageCtx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
		defer cancel()
		return op(stageCtx)
	}, policy)
}

// fail records a terminal failure with enough context for manual follow-up;
// the user is off-line by this point and receives no notification.
func (s *FulfillmentService) fail(log *zap.Logger, result FulfillmentResult, stage Stage, err error, start time.Time) FulfillmentResult {
	log.Error("Fulfillment failed",
		zap.String("stage", string(stage)),
		zap.String("email", result.Email),
		zap.Error(err),
	)
	metrics.FulfillmentRuns.WithLabelValues("failed_" + string(stage)).Inc()
	metrics.FulfillmentDuration.Observe(time.Since(start).Seconds())

	result.State = StateFailed
	result.FailedStage = stage
	result.Err = err
	return result
}
