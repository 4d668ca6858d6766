package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read on top of the config file.
const (
	EnvProvider   = "PUSH_PROVIDER"
	EnvPushURL    = "PUSH_API_URL"
	EnvUserKey    = "PUSH_API_USER_KEY"
	EnvAppToken   = "PUSH_API_APP_TOKEN"
	EnvAPIKey     = "PUSH_API_KEY"
	EnvBotToken   = "TELEGRAM_BOT_TOKEN"
	EnvChatID     = "TELEGRAM_CHAT_ID"
	EnvSchedule   = "SLOTWATCH_SCHEDULE"
	EnvLogLevel   = "LOG_LEVEL"
	DefaultDotenv = ".env"
)

// LoadDotenv loads KEY=VALUE pairs from path into the environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotenv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with the process environment.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&cfg.Push.Provider, EnvProvider)
	set(&cfg.Push.BaseURL, EnvPushURL)
	set(&cfg.Push.UserKey, EnvUserKey)
	set(&cfg.Push.AppToken, EnvAppToken)
	set(&cfg.Push.APIKey, EnvAPIKey)
	set(&cfg.Push.BotToken, EnvBotToken)
	set(&cfg.Monitor.Schedule, EnvSchedule)
	set(&cfg.Logging.Level, EnvLogLevel)

	if v, ok := lookup(EnvChatID); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return &ConfigError{Problems: []string{fmt.Sprintf("%s: invalid chat id %q", EnvChatID, v)}}
		}
		cfg.Push.ChatID = id
	}
	return nil
}
