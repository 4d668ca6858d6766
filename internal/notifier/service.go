package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	logx "slotwatch/pkg/logx"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMinInterval = 10 * time.Second
)

// NewSender builds the Sender for cfg.Provider.
func NewSender(cfg Config) (Sender, error) {
	cfg = withDefaults(cfg)
	switch cfg.Provider {
	case ProviderPushover:
		return newPushover(cfg, newFormClient(cfg.Timeout)), nil
	case ProviderProwl:
		return newProwl(cfg, newFormClient(cfg.Timeout)), nil
	case ProviderTelegram:
		return newTelegram(cfg)
	default:
		return nil, fmt.Errorf("unknown push provider %q", cfg.Provider)
	}
}

func newFormClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "slotwatch/1.0")
}

func withDefaults(cfg Config) Config {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderPushover
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return cfg
}

// Notifier sends one push per call, spaced by a token bucket so a flapping
// calendar cannot flood the operator's phone.
type Notifier struct {
	sender  Sender
	log     logx.Logger
	limiter *rate.Limiter
	timeout time.Duration
}

// New wraps sender. minInterval <= 0 disables spacing.
func New(sender Sender, minInterval, timeout time.Duration, log logx.Logger) *Notifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if minInterval > 0 {
		lim = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return &Notifier{
		sender:  sender,
		log:     log.With(logx.String("comp", "notifier"), logx.String("provider", sender.Name())),
		limiter: lim,
		timeout: timeout,
	}
}

// Notify pushes title/message once and reports whether it was delivered.
func (n *Notifier) Notify(ctx context.Context, title, message string) bool {
	if err := n.limiter.Wait(ctx); err != nil {
		n.log.Warn("push skipped; rate limit wait aborted", logx.Err(err))
		return false
	}

	sctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	err := n.sender.Send(sctx, Message{Title: title, Text: message})
	took := time.Since(start)
	if err != nil {
		kind := "transport"
		if errors.Is(err, ErrDelivery) {
			kind = "delivery"
		}
		n.log.Error("push failed", logx.String("kind", kind), logx.Duration("took", took), logx.Err(err))
		return false
	}
	n.log.Debug("push delivered", logx.Duration("took", took))
	return true
}
