package notifier

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTransport means the push endpoint could not be reached.
	ErrTransport = errors.New("push transport error")
	// ErrDelivery means the endpoint answered but did not accept the push.
	ErrDelivery = errors.New("push not accepted")
)

const (
	ProviderPushover = "pushover"
	ProviderProwl    = "prowl"
	ProviderTelegram = "telegram"
)

// Config selects and configures the push provider.
// Only the credentials of the selected provider are used.
type Config struct {
	Provider string
	// BaseURL overrides the provider endpoint (Bot API root for telegram).
	BaseURL string

	UserKey  string // pushover
	AppToken string // pushover
	APIKey   string // prowl
	BotToken string // telegram
	ChatID   int64  // telegram

	Timeout time.Duration
	// MinInterval is the minimum spacing between two pushes.
	MinInterval time.Duration
}

// Message is one push.
type Message struct {
	Title string
	Text  string
}

// Sender delivers a message through one provider.
type Sender interface {
	Name() string
	Send(ctx context.Context, m Message) error
}
