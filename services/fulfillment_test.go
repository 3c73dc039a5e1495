package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"itinerary-service/models"
	"itinerary-service/sender"
	"itinerary-service/services"
	"itinerary-service/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---- mock generator ----

type mockGenerator struct {
	mu    sync.Mutex
	calls int
}

func (m *mockGenerator) Generate(_ context.Context, form models.ItineraryForm) models.GeneratedItinerary {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return services.FallbackItinerary(form)
}

// ---- mock renderer ----

type mockRenderer struct {
	mu       sync.Mutex
	calls    int
	failures int // fail this many leading calls
	err      error
}

func (m *mockRenderer) Render(_ context.Context, itinerary models.GeneratedItinerary) (models.RenderedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil && (m.failures == 0 || m.calls <= m.failures) {
		return models.RenderedDocument{}, m.err
	}
	return models.RenderedDocument{
		Filename:    services.DocumentFilename(itinerary),
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 test"),
	}, nil
}

// ---- mock sender ----

type mockSender struct {
	mu     sync.Mutex
	calls  int
	lastTo string
	err    error
}

func (m *mockSender) SendItinerary(_ context.Context, to string, _ models.RenderedDocument, _ models.GeneratedItinerary) (sender.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastTo = to
	if m.err != nil {
		return sender.SendResult{}, m.err
	}
	return sender.SendResult{MessageID: "smtp-test", SentAt: time.Now()}, nil
}

func (m *mockSender) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ---- helpers ----

func newTestFulfillment(intake *store.IntakeStore, g *mockGenerator, r *mockRenderer, s *mockSender) *services.FulfillmentService {
	logger, _ := zap.NewDevelopment()
	return services.NewFulfillmentService(intake, g, r, s, services.FulfillmentConfig{
		StageTimeout:  time.Second,
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
	}, logger)
}

func checkoutEvent(sessionID string) models.PaymentEvent {
	return models.PaymentEvent{
		Type:           models.EventCheckoutCompleted,
		SessionID:      sessionID,
		ConfirmedEmail: "a@b.com",
	}
}

func storedForm(intake *store.IntakeStore, sessionID string) {
	intake.Put(sessionID, models.ItineraryForm{
		City:      "Paris",
		Date:      "2025-06-01",
		Start:     "09:00",
		End:       "11:00",
		Interests: []string{"Food"},
		Email:     "a@b.com",
	})
}

// ---- tests ----

func TestHandlePaymentEventSuccess(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g, r, s := &mockGenerator{}, &mockRenderer{}, &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	result := svc.HandlePaymentEvent(t.Context(), checkoutEvent("cs_1"))

	assert.Equal(t, services.StateDone, result.State)
	assert.NoError(t, result.Err)
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "a@b.com", s.lastTo)
	assert.Equal(t, 0, intake.Len(), "entry must be consumed at the verified transition")
}

func TestHandlePaymentEventDuplicateIsNoOp(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g, r, s := &mockGenerator{}, &mockRenderer{}, &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	first := svc.HandlePaymentEvent(t.Context(), checkoutEvent("cs_1"))
	second := svc.HandlePaymentEvent(t.Context(), checkoutEvent("cs_1"))

	assert.Equal(t, services.StateDone, first.State)
	assert.Equal(t, services.StateNoPending, second.State)
	assert.ErrorIs(t, second.Err, services.ErrSessionNotFound)
	assert.Equal(t, 1, s.calls, "exactly one email for redelivered notifications")
}

func TestHandlePaymentEventConcurrentRedelivery(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g, r, s := &mockGenerator{}, &mockRenderer{}, &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.HandlePaymentEvent(context.Background(), checkoutEvent("cs_1"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, s.callCount(), "concurrent redelivery must fulfill at most once")
}

func TestHandlePaymentEventUnknownSession(t *testing.T) {
	intake := store.NewIntakeStore(0)
	g, r, s := &mockGenerator{}, &mockRenderer{}, &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	result := svc.HandlePaymentEvent(t.Context(), checkoutEvent("cs_unknown"))

	assert.Equal(t, services.StateNoPending, result.State)
	assert.Equal(t, 0, g.calls)
	assert.Equal(t, 0, s.calls)
}

func TestHandlePaymentEventIgnoresOtherTypes(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g, r, s := &mockGenerator{}, &mockRenderer{}, &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	result := svc.HandlePaymentEvent(t.Context(), models.PaymentEvent{
		Type:           models.EventOther,
		SessionID:      "cs_1",
		ConfirmedEmail: "a@b.com",
	})

	assert.Equal(t, services.StateSkipped, result.State)
	assert.Equal(t, 1, intake.Len(), "non-checkout events must not consume the entry")
}

func TestHandlePaymentEventMissingEmailDropped(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g, r, s := &mockGenerator{}, &mockRenderer{}, &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	evt := checkoutEvent("cs_1")
	evt.ConfirmedEmail = ""
	result := svc.HandlePaymentEvent(t.Context(), evt)

	assert.Equal(t, services.StateSkipped, result.State)
	assert.Equal(t, 0, s.calls)
}

func TestHandlePaymentEventRenderFailureIsTerminal(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g := &mockGenerator{}
	r := &mockRenderer{err: services.ErrRenderFailure}
	s := &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	result := svc.HandlePaymentEvent(t.Context(), checkoutEvent("cs_1"))

	assert.Equal(t, services.StateFailed, result.State)
	assert.Equal(t, services.StageRender, result.FailedStage)
	assert.ErrorIs(t, result.Err, services.ErrRenderFailure)
	assert.Equal(t, 0, s.calls, "delivery must not run after a render failure")
	assert.Equal(t, 3, r.calls, "initial attempt plus retry budget")
}

func TestHandlePaymentEventTransientRenderFailureRecovers(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g := &mockGenerator{}
	r := &mockRenderer{err: errors.New("chrome crashed"), failures: 1}
	s := &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	result := svc.HandlePaymentEvent(t.Context(), checkoutEvent("cs_1"))

	require.Equal(t, services.StateDone, result.State)
	assert.Equal(t, 2, r.calls)
	assert.Equal(t, 1, s.calls)
}

func TestHandlePaymentEventDeliveryFailureIsTerminal(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g := &mockGenerator{}
	r := &mockRenderer{}
	s := &mockSender{err: services.ErrDeliveryFailure}
	svc := newTestFulfillment(intake, g, r, s)

	result := svc.HandlePaymentEvent(t.Context(), checkoutEvent("cs_1"))

	assert.Equal(t, services.StateFailed, result.State)
	assert.Equal(t, services.StageDeliver, result.FailedStage)
	assert.ErrorIs(t, result.Err, services.ErrDeliveryFailure)
	assert.Equal(t, 3, s.calls)
	assert.Equal(t, 0, intake.Len(), "entry stays consumed even on failure")
}

// Malformed generator output still ends in a delivered fallback document.
func TestFallbackItineraryStillDelivered(t *testing.T) {
	intake := store.NewIntakeStore(0)
	storedForm(intake, "cs_1")
	g, r, s := &mockGenerator{}, &mockRenderer{}, &mockSender{}
	svc := newTestFulfillment(intake, g, r, s)

	result := svc.HandlePaymentEvent(t.Context(), checkoutEvent("cs_1"))

	assert.Equal(t, services.StateDone, result.State)
	assert.Equal(t, 1, s.calls)
}
