package availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSendsFixedQueryAndCookies(t *testing.T) {
	t.Parallel()
	var got *http.Request
	srv := newTestServer(t, http.StatusOK, `{"content":{"21":{"2024-01-01":{"10:00":true}}}}`, func(r *http.Request) {
		got = r.Clone(context.Background())
	})

	f := NewFetcher(Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	raw, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, http.MethodGet, got.Method)
	q := got.URL.Query()
	assert.Equal(t, "getAppointments", q.Get("action"))
	assert.Equal(t, FormID, q.Get("formID"))
	assert.Equal(t, Timezone, q.Get("timezone"))
	assert.True(t, q.Has("firstAvailableDates"))
	assert.Equal(t, "", q.Get("firstAvailableDates"))
	assert.NotContains(t, got.URL.RawQuery, "+")
	assert.Contains(t, got.URL.RawQuery, "timezone=Europe%2FLondon%20%28GMT%2B01%3A00%29")
	assert.Equal(t, QueryString(), got.URL.RawQuery)

	theme, err := got.Cookie("theme")
	require.NoError(t, err)
	assert.Equal(t, "tile-black", theme.Value)
	guest, err := got.Cookie("guest")
	require.NoError(t, err)
	assert.Equal(t, "guest_b919c00da0366ef1", guest.Value)

	assert.Equal(t, Normalized{"2024-01-01": {"10:00"}}, Normalize(raw))
}

func TestFetchSkipsFalsyDay(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, http.StatusOK, `{"content":{"21":{"2024-01-01":false,"2024-01-02":{"10:00":true}}}}`, nil)

	raw, err := NewFetcher(Options{BaseURL: srv.URL}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Normalized{"2024-01-02": {"10:00"}}, Normalize(raw))
}

func TestFetchEmptyField(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, http.StatusOK, `{"content":{"21":[]}}`, nil)
	raw, err := NewFetcher(Options{BaseURL: srv.URL}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestFetchTransportErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
		{name: "not json", status: http.StatusOK, body: `<html>maintenance</html>`},
		{name: "missing content", status: http.StatusOK, body: `{"responseCode":200}`},
		{name: "missing field", status: http.StatusOK, body: `{"content":{"3":{}}}`},
		{name: "bad day shape", status: http.StatusOK, body: `{"content":{"21":{"2024-01-01":"x"}}}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, tt.status, tt.body, nil)
			_, err := NewFetcher(Options{BaseURL: srv.URL}).Fetch(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransport)
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewFetcher(Options{BaseURL: url, Timeout: time.Second}).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}
