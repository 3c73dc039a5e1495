package sender

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"time"

	"itinerary-service/models"
)

const mimeBoundary = "itinerary-mime-boundary"

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
}

func NewSMTPSender(host, port, username, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, username: username, password: password}
}

func (s *SMTPSender) SendItinerary(ctx context.Context, to string, doc models.RenderedDocument, itinerary models.GeneratedItinerary) (SendResult, error) {
	if s.host == "" || s.username == "" || s.password == "" {
		return SendResult{}, fmt.Errorf("smtp transport not configured")
	}

	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := buildMessage(s.username, to, itinerary, doc)

	if err := smtp.SendMail(addr, auth, s.username, []string{to}, msg); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	return SendResult{
		MessageID: fmt.Sprintf("smtp-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// Subject returns the message subject for an itinerary delivery.
func Subject(itinerary models.GeneratedItinerary) string {
	return fmt.Sprintf("Your %s Day Itinerary - %s", itinerary.City, itinerary.Date)
}

// buildMessage assembles a multipart/mixed MIME message with an HTML summary
// body and the rendered PDF as a base64 attachment.
func buildMessage(from, to string, itinerary models.GeneratedItinerary, doc models.RenderedDocument) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", Subject(itinerary)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mimeBoundary)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	fmt.Fprintf(&buf, "<h2>Your Perfect Day in %s</h2>", itinerary.City)
	fmt.Fprintf(&buf, "<p>Thank you for your purchase! Here's your personalized day itinerary for %s.</p>", itinerary.Date)
	fmt.Fprintf(&buf, "<p>Estimated cost: %s</p>", itinerary.TotalCost)
	buf.WriteString("<p>Enjoy your adventure!</p>\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", doc.ContentType)
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n", doc.Filename)
	buf.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(doc.Content)
	// RFC 2045 line-length limit.
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)

	return buf.Bytes()
}
