package models

// ItineraryForm is the request data captured at checkout time. It is stored
// in the intake store until the matching payment confirmation arrives and is
// never mutated after creation.
type ItineraryForm struct {
	City      string   `json:"city" binding:"required"`
	Date      string   `json:"date" binding:"required"`
	Start     string   `json:"start" binding:"required"`
	End       string   `json:"end" binding:"required"`
	Interests []string `json:"interests" binding:"required,min=1"`
	Email     string   `json:"email" binding:"required,email"`
}

// ItineraryItem is a single timed activity in a generated day plan.
type ItineraryItem struct {
	Time        string `json:"time"` // HH:MM
	Activity    string `json:"activity"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Cost        string `json:"cost,omitempty"`
	MapsURL     string `json:"mapsUrl,omitempty"`
}

// GeneratedItinerary is the structured day plan produced once per
// fulfillment run.
type GeneratedItinerary struct {
	City      string          `json:"city"`
	Date      string          `json:"date"`
	Items     []ItineraryItem `json:"items"`
	TotalCost string          `json:"totalCost"`
	Tips      []string        `json:"tips"`
}

// RenderedDocument is the rendered PDF artifact handed to the delivery
// dispatcher and discarded after dispatch.
type RenderedDocument struct {
	Filename    string
	ContentType string
	Content     []byte
}
