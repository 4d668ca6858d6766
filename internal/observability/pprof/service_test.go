package pprof

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logx "slotwatch/pkg/logx"
)

func start(t *testing.T, cfg Config, status func() any) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := New(cfg, status, logx.Nop())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	actx, acancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer acancel()
	addr, err := s.Addr(actx)
	require.NoError(t, err)
	return "http://" + addr
}

func TestHealthzReportsStatus(t *testing.T) {
	base := start(t, Config{Addr: "127.0.0.1:0"}, func() any {
		return map[string]any{"last_outcome": "notified", "ticks": 3}
	})

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "notified", got["last_outcome"])
	assert.EqualValues(t, 3, got["ticks"])
}

func TestTokenRequired(t *testing.T) {
	base := start(t, Config{Addr: "127.0.0.1:0", Token: "s3cret"}, nil)

	resp, err := http.Get(base + "/debug/pprof/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, base+"/debug/pprof/cmdline", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/healthz?token=s3cret")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunRefusesPublicBindWithoutToken(t *testing.T) {
	err := New(Config{Addr: ":0"}, nil, logx.Nop()).Run(context.Background())
	assert.ErrorIs(t, err, ErrInsecureBind)
}

func TestDisabledReturnsImmediately(t *testing.T) {
	assert.NoError(t, New(Config{}, nil, logx.Nop()).Run(context.Background()))
}

func TestIsLoopbackAddr(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:6060": true,
		"localhost:6060": true,
		"[::1]:6060":     true,
		":6060":          false,
		"0.0.0.0:6060":   false,
		"10.0.0.5:6060":  false,
		"garbage":        false,
	}
	for addr, want := range cases {
		assert.Equal(t, want, isLoopbackAddr(addr), addr)
	}
}
