package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://submit.jotformeu.com/server.php"

	// FormID is the JotForm form that carries the booking calendar.
	FormID = "201591865335358"
	// FieldID is the appointment field of that form; its calendar lives
	// under content[FieldID] in the response.
	FieldID  = "21"
	Timezone = "Europe/London (GMT+01:00)"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "slotwatch/1.0"
)

// ErrTransport marks a failed query: network error, non-2xx status or a
// body that is not the expected JSON shape.
var ErrTransport = errors.New("availability transport error")

// sessionCookies are the guest session values the public form sends.
var sessionCookies = []*http.Cookie{
	{Name: "theme", Value: "tile-black"},
	{Name: "guest", Value: "guest_b919c00da0366ef1"},
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Fetcher queries the appointment endpoint. It never retries; the next
// scheduled tick is the retry.
type Fetcher struct {
	client  *resty.Client
	baseURL string
}

func NewFetcher(opts Options) *Fetcher {
	if strings.TrimSpace(opts.BaseURL) == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent).
		SetCookies(sessionCookies)
	return &Fetcher{client: client, baseURL: opts.BaseURL}
}

// QueryString returns the fixed query of the availability request.
// Spaces are percent-encoded ("%20") rather than "+".
func QueryString() string {
	v := url.Values{}
	v.Set("action", "getAppointments")
	v.Set("formID", FormID)
	v.Set("timezone", Timezone)
	v.Set("firstAvailableDates", "")
	return strings.ReplaceAll(v.Encode(), "+", "%20")
}

type envelope struct {
	Content json.RawMessage `json:"content"`
}

// Fetch performs one GET and returns the calendar of the monitored field.
func (f *Fetcher) Fetch(ctx context.Context) (RawAvailability, error) {
	// The query goes into the URL as-is: SetQueryString would re-encode
	// spaces as "+".
	resp, err := f.client.R().
		SetContext(ctx).
		Get(f.baseURL + "?" + QueryString())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode())
	}
	raw, err := decodeResponse(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return raw, nil
}

func decodeResponse(body []byte) (RawAvailability, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	content := bytes.TrimSpace(env.Content)
	if len(content) == 0 || bytes.Equal(content, []byte("null")) {
		return nil, errors.New("response has no content")
	}

	var field json.RawMessage
	found := false
	err := decodeOrderedObject(content, func(key string, v json.RawMessage) error {
		if key == FieldID {
			field = v
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("content has no field %q", FieldID)
	}

	var raw RawAvailability
	if err := json.Unmarshal(field, &raw); err != nil {
		return nil, fmt.Errorf("decode field %q: %w", FieldID, err)
	}
	return raw, nil
}
