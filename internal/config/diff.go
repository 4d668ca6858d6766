package config

import (
	"sort"

	logx "slotwatch/pkg/logx"
)

// SummarizeChange returns the changed sections and safe structured attrs for
// logging (never includes credentials). Only "logging" applies at runtime;
// the other sections need a restart.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 8)

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Monitor != newCfg.Monitor {
		changed = append(changed, "monitor")
		attrs = append(attrs,
			logx.String("monitor.schedule", newCfg.Monitor.Schedule),
			logx.String("monitor.fetch_timeout", newCfg.Monitor.FetchTimeout),
		)
	}

	o, n := oldCfg.Push, newCfg.Push
	if o.Provider != n.Provider || o.BaseURL != n.BaseURL || o.ChatID != n.ChatID ||
		o.Timeout != n.Timeout || o.MinInterval != n.MinInterval ||
		o.UserKey != n.UserKey || o.AppToken != n.AppToken ||
		o.APIKey != n.APIKey || o.BotToken != n.BotToken {
		changed = append(changed, "push")
		attrs = append(attrs,
			logx.String("push.provider", n.Provider),
			logx.Bool("push.base_url_set", n.BaseURL != ""),
			logx.Bool("push.credentials_changed", o.UserKey != n.UserKey || o.AppToken != n.AppToken || o.APIKey != n.APIKey || o.BotToken != n.BotToken),
		)
	}

	if oldCfg.Debug != newCfg.Debug {
		changed = append(changed, "debug")
		attrs = append(attrs,
			logx.String("debug.addr", newCfg.Debug.Addr),
			logx.Bool("debug.token_set", newCfg.Debug.Token != ""),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}

// NeedsRestart reports whether any changed section is only read at startup.
func NeedsRestart(changed []string) bool {
	for _, s := range changed {
		if s != "logging" {
			return true
		}
	}
	return false
}
