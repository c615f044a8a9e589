// Package notify delivers event notifications to subscriber webhooks.
// Delivery is best-effort: each subscriber gets exactly one attempt per
// event, and one subscriber's failure never touches the others.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bookwish/internal/constants"
	"bookwish/internal/domain"
)

const userAgent = "bookwish/1.0"

const (
	defaultTitleTemplate = "New request: {bookTitle}"
	defaultBodyTemplate  = "{requester} requested {bookTitle} by {bookAuthors}"
)

// Sender posts a single notification payload to a subscriber endpoint.
type Sender struct {
	client *http.Client
}

func NewSender() *Sender {
	return &Sender{
		client: &http.Client{Timeout: constants.WebhookTimeout},
	}
}

// Send expands the subscriber's templates against the snapshot and posts
// the result. No retries; the caller decides what a failure means.
func (s *Sender) Send(ctx context.Context, n *domain.Notification, snap domain.RequestSnapshot) error {
	titleTmpl := n.TitleTemplate
	if titleTmpl == "" {
		titleTmpl = defaultTitleTemplate
	}
	bodyTmpl := n.BodyTemplate
	if bodyTmpl == "" {
		bodyTmpl = defaultBodyTemplate
	}

	payload := map[string]string{
		"title": Expand(titleTmpl, snap),
		"body":  Expand(bodyTmpl, snap),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	// Subscriber-configured headers win over the defaults.
	for k, v := range n.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification post failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification endpoint returned %s", resp.Status)
	}
	return nil
}

// Expand substitutes {placeholder} variables in a subscriber template.
func Expand(tmpl string, snap domain.RequestSnapshot) string {
	r := strings.NewReplacer(
		"{eventType}", string(snap.Event),
		"{bookTitle}", snap.Title,
		"{bookAuthors}", strings.Join(snap.Authors, ", "),
		"{bookNarrators}", strings.Join(snap.Narrators, ", "),
		"{requester}", snap.Requester,
	)
	return r.Replace(tmpl)
}
