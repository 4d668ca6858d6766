package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotwatch/internal/monitor"
	"slotwatch/internal/notifier"
	logx "slotwatch/pkg/logx"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestBuildFromEnvOnly(t *testing.T) {
	t.Parallel()
	m := NewManager("")
	m.SetLookup(envMap(map[string]string{
		EnvUserKey:  "user-1",
		EnvAppToken: "token-1",
		EnvPushURL:  "https://push.example/1/messages.json",
	}))

	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Same(t, cfg, m.Get())

	rt, err := cfg.Resolve()
	require.NoError(t, err)
	assert.Equal(t, monitor.SpecInterval, rt.Schedule.Kind)
	assert.Equal(t, 60*time.Second, rt.Schedule.Every)
	assert.Equal(t, DefaultFetchTimeout, rt.FetchTimeout)
	assert.Equal(t, notifier.DefaultTitle, rt.Title)
	assert.Equal(t, notifier.ProviderPushover, rt.Push.Provider)
	assert.Equal(t, "user-1", rt.Push.UserKey)
	assert.Equal(t, "token-1", rt.Push.AppToken)
	assert.Equal(t, "https://push.example/1/messages.json", rt.Push.BaseURL)
	assert.Equal(t, DefaultPushTimeout, rt.Push.Timeout)
	assert.Equal(t, DefaultMinInterval, rt.Push.MinInterval)
	assert.True(t, rt.Logging.Console)
}

func TestBuildMissingCredentials(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		env     map[string]string
		missing []string
	}{
		{name: "pushover", env: map[string]string{}, missing: []string{EnvUserKey, EnvAppToken}},
		{name: "pushover token only", env: map[string]string{EnvAppToken: "t"}, missing: []string{EnvUserKey}},
		{name: "prowl", env: map[string]string{EnvProvider: "prowl"}, missing: []string{EnvAPIKey}},
		{name: "telegram", env: map[string]string{EnvProvider: "telegram", EnvBotToken: "1:x"}, missing: []string{EnvChatID}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewManager("")
			m.SetLookup(envMap(tt.env))
			_, err := m.Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)

			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			for _, key := range tt.missing {
				assert.Contains(t, cerr.Error(), key)
			}
			assert.Nil(t, m.Get())
		})
	}
}

func TestBuildYAMLFileWithEnvOverride(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "slotwatch.yaml", `
monitor:
  schedule: "*/2 * * * *"
  title: Refuse slots
push:
  provider: telegram
  chat_id: 42
  min_interval: 0s
logging:
  level: debug
  console: false
`)
	m := NewManager(path)
	m.SetLookup(envMap(map[string]string{EnvBotToken: "123:abc", EnvLogLevel: "warn"}))

	cfg, err := m.Load()
	require.NoError(t, err)
	rt, err := cfg.Resolve()
	require.NoError(t, err)

	assert.Equal(t, monitor.SpecCron, rt.Schedule.Kind)
	assert.Equal(t, "Refuse slots", rt.Title)
	assert.Equal(t, notifier.ProviderTelegram, rt.Push.Provider)
	assert.Equal(t, int64(42), rt.Push.ChatID)
	assert.Equal(t, "123:abc", rt.Push.BotToken)
	assert.Zero(t, rt.Push.MinInterval)
	assert.Equal(t, "warn", rt.Logging.Level)
	assert.False(t, rt.Logging.Console)
}

func TestBuildRejectsBadFile(t *testing.T) {
	t.Parallel()
	env := envMap(map[string]string{EnvUserKey: "u", EnvAppToken: "t"})
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "unknown field", file: "c.json", body: `{"monitor":{"schedule":"60s","form_id":"1"}}`},
		{name: "trailing data", file: "c.json", body: `{"monitor":{}} {}`},
		{name: "bad schedule", file: "c.json", body: `{"monitor":{"schedule":"soon"}}`},
		{name: "bad duration", file: "c.yml", body: "push:\n  timeout: fast\n"},
		{name: "unknown provider", file: "c.json", body: `{"push":{"provider":"fax"}}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewManager(writeFile(t, t.TempDir(), tt.file, tt.body))
			m.SetLookup(env)
			_, err := m.Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestResolveDebugAddr(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Push.UserKey, cfg.Push.AppToken = "u", "t"

	rt, err := cfg.Resolve()
	require.NoError(t, err)
	assert.False(t, rt.Debug.Enabled())

	cfg.Debug = DebugConfig{Addr: " 127.0.0.1:6060 ", Token: "x"}
	rt, err = cfg.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6060", rt.Debug.Addr)
	assert.Equal(t, "x", rt.Debug.Token)

	cfg.Debug.Addr = "6060"
	_, err = cfg.Resolve()
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "debug.addr")

	cfg.Debug = DebugConfig{Addr: "0.0.0.0:6060"}
	_, err = cfg.Resolve()
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "token")
}

func TestApplyEnvInvalidChatID(t *testing.T) {
	t.Parallel()
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{EnvChatID: "not-a-number"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadDotenvMissingFile(t *testing.T) {
	t.Parallel()
	assert.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, LoadDotenv(""))
}

func TestSummarizeChange(t *testing.T) {
	t.Parallel()
	a := Default()
	b := Default()
	b.Logging.Level = "debug"
	changed, attrs := SummarizeChange(&a, &b)
	assert.Equal(t, []string{"logging"}, changed)
	assert.NotEmpty(t, attrs)
	assert.False(t, NeedsRestart(changed))

	b.Push.AppToken = "rotated"
	b.Monitor.Schedule = "30s"
	changed, _ = SummarizeChange(&a, &b)
	assert.Equal(t, []string{"logging", "monitor", "push"}, changed)
	assert.True(t, NeedsRestart(changed))

	b.Debug.Addr = "127.0.0.1:6060"
	changed, _ = SummarizeChange(&a, &b)
	assert.Equal(t, []string{"debug", "logging", "monitor", "push"}, changed)

	changed, _ = SummarizeChange(nil, nil)
	assert.Empty(t, changed)
}

func TestReloadPublishesOnlyChanges(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "c.json", `{"logging":{"level":"info","console":true}}`)
	m := NewManager(path)
	m.SetLookup(envMap(map[string]string{EnvUserKey: "u", EnvAppToken: "t"}))
	_, err := m.Load()
	require.NoError(t, err)

	ch := m.Subscribe(1)
	assert.False(t, m.reload(), "unchanged content must not publish")

	writeFile(t, dir, "c.json", `{"logging":{"level":"debug","console":true}}`)
	require.True(t, m.reload())
	got := <-ch
	assert.Equal(t, "debug", got.Logging.Level)

	writeFile(t, dir, "c.json", `{"logging":{"level":`)
	assert.False(t, m.reload(), "broken file must keep the previous config")
	assert.Equal(t, "debug", m.Get().Logging.Level)

	m.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "c.json", `{"logging":{"level":"info","console":true}}`)
	m := NewManager(path)
	m.SetLookup(envMap(map[string]string{EnvUserKey: "u", EnvAppToken: "t"}))
	var logs lockedBuffer
	m.SetLogger(logx.NewWriter(&logs, "debug"))
	_, err := m.Load()
	require.NoError(t, err)
	ch := m.Subscribe(4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "config watcher started")
	}, 5*time.Second, 10*time.Millisecond)

	// One write: repeated writes keep resetting the debounce timer.
	writeFile(t, dir, "c.json", `{"logging":{"level":"error","console":true}}`)

	var got *Config
	require.Eventually(t, func() bool {
		select {
		case got = <-ch:
			return true
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
	require.NotNil(t, got)
	assert.Equal(t, "error", got.Logging.Level)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchWithoutFileReturns(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewManager("").Watch(context.Background()))
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}
