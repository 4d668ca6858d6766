package config

import "time"

// Config is the process configuration.
//
// It is built from (in order): built-in defaults, an optional JSON/YAML file,
// a .env file and the process environment. Later sources win.
type Config struct {
	Monitor MonitorConfig `json:"monitor"`
	Push    PushConfig    `json:"push"`
	Logging LoggingConfig `json:"logging"`
	Debug   DebugConfig   `json:"debug"`
}

// MonitorConfig controls the polling loop.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type MonitorConfig struct {
	// Schedule is an interval ("60s", "00:05") or a cron expression
	// ("*/2 * * * *", "@every 90s").
	Schedule     string `json:"schedule"`
	FetchTimeout string `json:"fetch_timeout,omitempty"`
	Title        string `json:"title,omitempty"`
}

// PushConfig selects the push provider and its credentials.
//
// Credentials are normally supplied through the environment:
//
//	PUSH_API_USER_KEY / PUSH_API_APP_TOKEN (pushover)
//	PUSH_API_KEY                          (prowl)
//	TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID (telegram)
type PushConfig struct {
	Provider string `json:"provider"`
	BaseURL  string `json:"base_url,omitempty"`

	UserKey  string `json:"user_key,omitempty"`
	AppToken string `json:"app_token,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BotToken string `json:"bot_token,omitempty"`
	ChatID   int64  `json:"chat_id,omitempty"`

	Timeout     string `json:"timeout,omitempty"`
	MinInterval string `json:"min_interval,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// DebugConfig enables the pprof/healthz HTTP server when Addr is set.
// Binding anything but loopback requires Token.
type DebugConfig struct {
	Addr  string `json:"addr,omitempty"`
	Token string `json:"token,omitempty"`
}

const (
	DefaultSchedule     = "60s"
	DefaultFetchTimeout = 30 * time.Second
	DefaultPushTimeout  = 15 * time.Second
	DefaultMinInterval  = 10 * time.Second
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Monitor: MonitorConfig{
			Schedule:     DefaultSchedule,
			FetchTimeout: DefaultFetchTimeout.String(),
		},
		Push: PushConfig{
			Provider:    "pushover",
			Timeout:     DefaultPushTimeout.String(),
			MinInterval: DefaultMinInterval.String(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}
