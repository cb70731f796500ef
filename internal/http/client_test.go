package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cctx/pkg/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"missing_base_url", &Config{Timeout: time.Second}},
		{"bad_base_url", &Config{BaseURL: "::", Timeout: time.Second}},
		{"zero_timeout", &Config{BaseURL: "https://api.bybit.com"}},
		{"negative_retries", &Config{BaseURL: "https://api.bybit.com", Timeout: time.Second, MaxRetries: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config, zerolog.Nop())
			assert.Error(t, err)
		})
	}
}

func TestClient_Get(t *testing.T) {
	var gotPath, gotQuery, gotHeader string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Get("X-BAPI-API-KEY")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"retCode":0}`)
	})

	query := url.Values{"category": {"linear"}, "limit": {"1000"}}
	resp, err := client.Get(context.Background(), "v5/market/instruments-info",
		WithQuery(query),
		WithHeaders(map[string]string{"X-BAPI-API-KEY": "key"}),
	)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, `{"retCode":0}`, string(resp.Bytes()))
	assert.Equal(t, "/v5/market/instruments-info", gotPath)
	assert.Equal(t, query.Encode(), gotQuery)
	assert.Equal(t, "key", gotHeader)
}

func TestClient_PostSendsBodyVerbatim(t *testing.T) {
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := client.Post(context.Background(), "v5/test", []byte(`{"b":2,"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":1}`, gotBody)
}

func TestClient_Closed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.Get(context.Background(), "v5/market/time")
	assert.ErrorIs(t, err, core.ErrClientClosed)

	_, err = client.Post(context.Background(), "v5/market/time", nil)
	assert.ErrorIs(t, err, core.ErrClientClosed)
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "v5/market/time")
	assert.Error(t, err)
}
