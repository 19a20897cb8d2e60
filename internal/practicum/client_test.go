package practicum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwstatusbot/internal/homework"
	logx "hwstatusbot/pkg/logx"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := New(Config{Endpoint: endpoint, Token: "secret", Timeout: time.Second}, logx.Nop())
	require.NoError(t, err)
	return c
}

func TestFetchSendsAuthAndTimestamp(t *testing.T) {
	var gotAuth, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFrom = r.URL.Query().Get("from_date")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"homeworks": [], "current_date": 1700000000}`))
	}))
	t.Cleanup(srv.Close)

	raw, err := newTestClient(t, srv.URL).Fetch(context.Background(), 1699990000)
	require.NoError(t, err)
	assert.Equal(t, "OAuth secret", gotAuth)
	assert.Equal(t, "1699990000", gotFrom)
	assert.JSONEq(t, `{"homeworks": [], "current_date": 1700000000}`, string(raw))
}

func TestFetchNon200IsRemoteStatusError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`not even json`))
	}))
	t.Cleanup(srv.Close)

	raw, err := newTestClient(t, srv.URL).Fetch(context.Background(), 0)
	var remote *homework.RemoteStatusError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnauthorized, remote.Code)
	assert.Nil(t, raw)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchMalformedBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(t, srv.URL).Fetch(context.Background(), 0)
	var transport *homework.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, "decode body", transport.Op)
}

func TestFetchConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := newTestClient(t, endpoint).Fetch(context.Background(), 0)
	var transport *homework.TransportError
	require.ErrorAs(t, err, &transport)
}

func TestFetchTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(Config{Endpoint: srv.URL, Token: "secret", Timeout: 50 * time.Millisecond}, logx.Nop())
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), 0)
	var transport *homework.TransportError
	require.ErrorAs(t, err, &transport)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{}, logx.Nop())
	assert.Error(t, err)

	c, err := New(Config{Token: "x"}, logx.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, c.endpoint)
}
