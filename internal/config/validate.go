package config

import (
	"fmt"
	"strings"
	"time"

	"slotwatch/internal/monitor"
	"slotwatch/internal/notifier"
	"slotwatch/internal/observability/pprof"
	logx "slotwatch/pkg/logx"
)

// Runtime is the validated, typed view of Config.
type Runtime struct {
	Schedule     monitor.Schedule
	FetchTimeout time.Duration
	Title        string
	Push         notifier.Config
	Logging      logx.Config
	Debug        pprof.Config
}

// Validate reports every problem at once as a *ConfigError.
func (c *Config) Validate() error {
	_, err := c.Resolve()
	return err
}

// Resolve validates c and converts it to typed values.
func (c *Config) Resolve() (Runtime, error) {
	var (
		rt       Runtime
		problems []string
		err      error
	)
	add := func(err error) {
		if err != nil {
			problems = append(problems, err.Error())
		}
	}

	rt.Schedule, err = monitor.ParseSchedule(c.Monitor.Schedule)
	if err != nil {
		add(fmt.Errorf("monitor.schedule: %w", err))
	}
	rt.FetchTimeout, err = ParseDurationOrDefault("monitor.fetch_timeout", c.Monitor.FetchTimeout, DefaultFetchTimeout)
	add(err)
	rt.Title = strings.TrimSpace(c.Monitor.Title)
	if rt.Title == "" {
		rt.Title = notifier.DefaultTitle
	}

	p := c.Push
	rt.Push = notifier.Config{
		Provider: strings.ToLower(strings.TrimSpace(p.Provider)),
		BaseURL:  strings.TrimSpace(p.BaseURL),
		UserKey:  strings.TrimSpace(p.UserKey),
		AppToken: strings.TrimSpace(p.AppToken),
		APIKey:   strings.TrimSpace(p.APIKey),
		BotToken: strings.TrimSpace(p.BotToken),
		ChatID:   p.ChatID,
	}
	if rt.Push.Provider == "" {
		rt.Push.Provider = notifier.ProviderPushover
	}
	rt.Push.Timeout, err = ParseDurationOrDefault("push.timeout", p.Timeout, DefaultPushTimeout)
	add(err)
	rt.Push.MinInterval, err = ParseDurationField("push.min_interval", p.MinInterval)
	add(err)

	switch rt.Push.Provider {
	case notifier.ProviderPushover:
		if rt.Push.UserKey == "" {
			problems = append(problems, "push: "+EnvUserKey+" is required for pushover")
		}
		if rt.Push.AppToken == "" {
			problems = append(problems, "push: "+EnvAppToken+" is required for pushover")
		}
	case notifier.ProviderProwl:
		if rt.Push.APIKey == "" {
			problems = append(problems, "push: "+EnvAPIKey+" is required for prowl")
		}
	case notifier.ProviderTelegram:
		if rt.Push.BotToken == "" {
			problems = append(problems, "push: "+EnvBotToken+" is required for telegram")
		}
		if rt.Push.ChatID == 0 {
			problems = append(problems, "push: "+EnvChatID+" is required for telegram")
		}
	default:
		problems = append(problems, fmt.Sprintf("push.provider: unknown provider %q", p.Provider))
	}

	rt.Logging = c.Logging.LogxConfig()

	rt.Debug = pprof.Config{Addr: strings.TrimSpace(c.Debug.Addr), Token: strings.TrimSpace(c.Debug.Token)}
	if err := rt.Debug.Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("debug.addr: %v", err))
	}

	if len(problems) > 0 {
		return Runtime{}, &ConfigError{Problems: problems}
	}
	return rt, nil
}

func (l LoggingConfig) LogxConfig() logx.Config {
	return logx.Config{
		Level:   l.Level,
		Console: l.Console,
		File: logx.FileConfig{
			Enabled: l.File.Enabled,
			Path:    l.File.Path,
		},
	}
}
