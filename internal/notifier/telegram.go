package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	tele "gopkg.in/telebot.v4"
)

type telegramSender struct {
	bot  *tele.Bot
	chat *tele.Chat
}

func newTelegram(cfg Config) (*telegramSender, error) {
	settings := tele.Settings{
		Token:   cfg.BotToken,
		Offline: true,
		Client:  &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		settings.URL = cfg.BaseURL
	}
	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &telegramSender{bot: b, chat: &tele.Chat{ID: cfg.ChatID}}, nil
}

func (s *telegramSender) Name() string { return ProviderTelegram }

func (s *telegramSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: telegram: %v", ErrTransport, err)
	}
	text := m.Text
	if m.Title != "" {
		text = m.Title + "\n\n" + m.Text
	}
	_, err := s.bot.Send(s.chat, text, &tele.SendOptions{DisableWebPagePreview: true})
	if err == nil {
		return nil
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%w: telegram: %v", ErrTransport, err)
	}
	return fmt.Errorf("%w: telegram: %v", ErrDelivery, err)
}
