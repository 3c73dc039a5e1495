package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"itinerary-service/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const itineraryHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Your Day Itinerary - {{.City}}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 40px; }
    .header { text-align: center; margin-bottom: 30px; }
    .title { font-size: 24px; color: #333; margin-bottom: 10px; }
    .subtitle { font-size: 16px; color: #666; }
    .item { margin-bottom: 20px; padding: 15px; border-left: 4px solid #007bff; background: #f8f9fa; }
    .time { font-weight: bold; color: #007bff; }
    .activity { font-size: 18px; margin: 5px 0; }
    .location { color: #666; font-style: italic; }
    .description { margin-top: 5px; }
    .cost { color: #222; font-size: 15px; margin-top: 2px; }
    .tips { margin-top: 30px; padding: 15px; background: #e7f3ff; border-radius: 5px; }
    .total-cost { text-align: center; font-size: 18px; margin: 20px 0; }
    .maps-link a { color: #2196f3; text-decoration: underline; font-weight: 500; display: inline-block; margin-top: 6px; }
  </style>
</head>
<body>
  <div class="header">
    <div class="title">Your Perfect Day in {{.City}}</div>
    <div class="subtitle">{{.Date}}</div>
  </div>

  <div class="total-cost">
    <strong>Estimated Cost: {{.TotalCost}}</strong>
  </div>

  {{range .Items}}
  <div class="item">
    <div class="time">{{.Time}} ({{.Duration}})</div>
    <div class="activity">{{.Activity}}</div>
    <div class="location">{{.Location}}</div>
    <div class="description">{{.Description}}</div>
    <div class="cost"><strong>Cost:</strong> {{.Cost}}</div>
    {{if .MapsURL}}<div class="maps-link"><a href="{{.MapsURL}}">View on Google Maps</a></div>{{end}}
  </div>
  {{end}}

  <div class="tips">
    <h3>Tips for Your Day</h3>
    <ul>
      {{range .Tips}}<li>{{.}}</li>{{end}}
    </ul>
  </div>
</body>
</html>`

var itineraryTmpl = template.Must(template.New("itinerary").Parse(itineraryHTML))

// DocumentRenderer turns a generated itinerary into a binary document.
type DocumentRenderer interface {
	Render(ctx context.Context, itinerary models.GeneratedItinerary) (models.RenderedDocument, error)
}

// PDFRenderer rasterizes the itinerary HTML to an A4 PDF through a headless
// Chrome instance. Each render launches and tears down its own isolated
// browser; acceptable at this request volume.
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
	logger     *zap.Logger
}

func NewPDFRenderer(chromePath string, timeout time.Duration, logger *zap.Logger) *PDFRenderer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PDFRenderer{chromePath: chromePath, timeout: timeout, logger: logger}
}

// BuildHTML maps an itinerary to the fixed document layout: header, one
// block per item in input order, and the tips section. Zero items render an
// empty list, not an error; the maps link appears only when the item has one.
func BuildHTML(itinerary models.GeneratedItinerary) (string, error) {
	var buf bytes.Buffer
	if err := itineraryTmpl.Execute(&buf, itinerary); err != nil {
		return "", fmt.Errorf("execute itinerary template: %w", err)
	}
	return buf.String(), nil
}

func (r *PDFRenderer) Render(ctx context.Context, itinerary models.GeneratedItinerary) (models.RenderedDocument, error) {
	var empty models.RenderedDocument

	htmlDoc, err := BuildHTML(itinerary)
	if err != nil {
		return empty, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	var pdf []byte
	err = chromedp.Run(chromeCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlDoc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 inches
				WithPaperHeight(11.69).
				WithMarginTop(0.2).
				WithMarginBottom(0.2).
				WithMarginLeft(0.2).
				WithMarginRight(0.2).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return empty, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	r.logger.Info("PDF rendered",
		zap.String("city", itinerary.City),
		zap.Int("bytes", len(pdf)),
	)

	return models.RenderedDocument{
		Filename:    DocumentFilename(itinerary),
		ContentType: "application/pdf",
		Content:     pdf,
	}, nil
}

// DocumentFilename returns the fixed artifact name for an itinerary.
func DocumentFilename(itinerary models.GeneratedItinerary) string {
	return fmt.Sprintf("itinerary-%s-%s.pdf", itinerary.City, itinerary.Date)
}
