package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	defaultPushoverURL = "https://api.pushover.net/1/messages.json"
	defaultProwlURL    = "https://api.prowlapp.com/publicapi/add"

	prowlApplication = "slotwatch"
)

// formSender posts a form-encoded body. Pushover and Prowl only differ in
// field names.
type formSender struct {
	name   string
	url    string
	client *resty.Client
	fields func(m Message) map[string]string
}

func newPushover(cfg Config, client *resty.Client) *formSender {
	return &formSender{
		name:   ProviderPushover,
		url:    orDefault(cfg.BaseURL, defaultPushoverURL),
		client: client,
		fields: func(m Message) map[string]string {
			f := map[string]string{
				"user":    cfg.UserKey,
				"token":   cfg.AppToken,
				"message": m.Text,
			}
			if m.Title != "" {
				f["title"] = m.Title
			}
			return f
		},
	}
}

func newProwl(cfg Config, client *resty.Client) *formSender {
	return &formSender{
		name:   ProviderProwl,
		url:    orDefault(cfg.BaseURL, defaultProwlURL),
		client: client,
		fields: func(m Message) map[string]string {
			return map[string]string{
				"apikey":      cfg.APIKey,
				"application": prowlApplication,
				"event":       m.Title,
				"description": m.Text,
			}
		},
	}
}

func (s *formSender) Name() string { return s.name }

func (s *formSender) Send(ctx context.Context, m Message) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(s.fields(m)).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, s.name, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %s: status %d: %s", ErrDelivery, s.name, resp.StatusCode(), snippet(resp.String(), 200))
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func snippet(s string, maxN int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxN {
		return s
	}
	return s[:maxN-3] + "..."
}
