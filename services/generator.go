package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"itinerary-service/models"

	"go.uber.org/zap"
)

// DefaultItineraryPrompt is the fixed instruction template sent to the text
// backend. Only these placeholders are substituted, by literal string
// replacement: ${city}, ${date}, ${start}, ${end}, ${interests}.
const DefaultItineraryPrompt = `
You are a travel planner AI. Generate a personalized, timestamped itinerary for someone visiting ${city} on ${date} from ${start} to ${end}. Their interests include: ${interests}.

Requirements:
- If the time window is short (2 hours or less), only suggest 1-2 focused activities (e.g., a cafe stop and a nearby view).
- If the time window is long (4+ hours), break the day into 6-8 segments covering breakfast, lunch, dinner, and various activities.
- For each activity, include:
  - "time": exact start time
  - "activity": a clear activity title
  - "location": name + neighborhood or address
  - "description": 1-sentence experience summary
  - "duration": e.g., "1 hour"
  - "cost": estimated cost in USD (e.g., "$10" or "Free")
  - "mapsUrl": a Google Maps search link for the location, using this format: "https://www.google.com/maps/search/?api=1&query=" + URL-encoded(location + ", " + city)

Guidelines:
- Use real, well-rated places in ${city}.
- Match activities to the user's interests. If limited interests are given, default to a general balance of food, culture, nature, and fun.
- Group stops by neighborhood to reduce unnecessary travel.
- Add up to 3 smart tips at the end: local insights, reservations, dress/weather, transport, etc.

Respond ONLY in this strict JSON structure:
{
  "items": [
    {
      "time": "09:00",
      "activity": "Breakfast at Tartine Bakery",
      "location": "Tartine Bakery, 600 Guerrero St (Mission District)",
      "description": "Start your day with world-famous pastries and coffee.",
      "duration": "1 hour",
      "cost": "$15",
      "mapsUrl": "https://www.google.com/maps/search/?api=1&query=Tartine+Bakery+San+Francisco"
    }
  ],
  "totalCost": "$80-120",
  "tips": [ "..." ]
}
`

const defaultTotalCost = "$80-120"

// ContentGenerator turns validated request input into a day plan. By
// contract it cannot fail outward: every failure is replaced with the
// deterministic fallback itinerary, so paid users always receive something.
type ContentGenerator interface {
	Generate(ctx context.Context, form models.ItineraryForm) models.GeneratedItinerary
}

// OpenAIGenerator calls an OpenAI-compatible chat completions backend.
type OpenAIGenerator struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOpenAIGenerator(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) *OpenAIGenerator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIGenerator{
		model:      model,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FillPromptTemplate substitutes the five fixed placeholders into a prompt
// template. Interests are joined with ", ".
func FillPromptTemplate(template string, form models.ItineraryForm) string {
	r := strings.NewReplacer(
		"${city}", form.City,
		"${date}", form.Date,
		"${start}", form.Start,
		"${end}", form.End,
		"${interests}", strings.Join(form.Interests, ", "),
	)
	return r.Replace(template)
}

// FallbackItinerary is the fixed placeholder plan substituted when
// generation fails.
func FallbackItinerary(form models.ItineraryForm) models.GeneratedItinerary {
	return models.GeneratedItinerary{
		City: form.City,
		Date: form.Date,
		Items: []models.ItineraryItem{
			{
				Time:        "09:00",
				Activity:    "Start your day",
				Location:    "City Center",
				Description: "Begin your adventure in the heart of the city",
				Duration:    "1 hour",
				Cost:        "$0",
			},
		},
		TotalCost: "$50-75",
		Tips:      []string{"Wear comfortable shoes", "Bring a camera"},
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, form models.ItineraryForm) models.GeneratedItinerary {
	itinerary, err := g.complete(ctx, form)
	if err != nil {
		g.logger.Warn("Itinerary generation degraded to fallback",
			zap.String("city", form.City),
			zap.Error(err),
		)
		return FallbackItinerary(form)
	}
	return itinerary
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *OpenAIGenerator) complete(ctx context.Context, form models.ItineraryForm) (models.GeneratedItinerary, error) {
	var empty models.GeneratedItinerary

	prompt := FillPromptTemplate(DefaultItineraryPrompt, form)
	reqBody := map[string]any{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return empty, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := g.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return empty, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return empty, fmt.Errorf("chat completion request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return empty, fmt.Errorf("chat completion status %d: %s", resp.StatusCode, truncate(respBody, 256))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return empty, fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return empty, fmt.Errorf("completion has no choices")
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return empty, fmt.Errorf("completion has empty content")
	}

	var parsed struct {
		Items     []models.ItineraryItem `json:"items"`
		TotalCost string                 `json:"totalCost"`
		Tips      []string               `json:"tips"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return empty, fmt.Errorf("parse itinerary JSON: %w", err)
	}
	if len(parsed.Items) == 0 {
		return empty, fmt.Errorf("itinerary JSON has no items")
	}

	// Partial success: missing totalCost or tips are defaulted, not fatal.
	if parsed.TotalCost == "" {
		parsed.TotalCost = defaultTotalCost
	}
	if parsed.Tips == nil {
		parsed.Tips = []string{}
	}

	return models.GeneratedItinerary{
		City:      form.City,
		Date:      form.Date,
		Items:     parsed.Items,
		TotalCost: parsed.TotalCost,
		Tips:      parsed.Tips,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
