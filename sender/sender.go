package sender

import (
	"context"
	"time"

	"itinerary-service/models"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender delivers a rendered itinerary to the requester. No retry is
// performed here; retry policy belongs to the orchestrator.
type EmailSender interface {
	SendItinerary(ctx context.Context, to string, doc models.RenderedDocument, itinerary models.GeneratedItinerary) (SendResult, error)
}
