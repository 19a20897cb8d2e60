package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logx "hwstatusbot/pkg/logx"
)

func waitForHTTP(ctx context.Context, url string) (string, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		reqCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, http.NoBody)
		if err != nil {
			cancel()
			return "", err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			b, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			cancel()
			return string(b), nil
		}
		cancel()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func TestServerApplyEnableDisable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.PollsTotal.WithLabelValues("ok").Inc()
	m.FailuresTotal.WithLabelValues("schema").Add(2)

	srv := NewServer(reg, logx.Nop())
	t.Cleanup(func() { srv.Stop(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv.Apply(ctx, ServerConfig{Enabled: true, Addr: "127.0.0.1:0"})
	addr := srv.Addr()
	require.NotEmpty(t, addr)

	body, err := waitForHTTP(ctx, "http://"+addr+"/metrics")
	require.NoError(t, err)
	assert.Contains(t, body, `hwstatus_polls_total{result="ok"} 1`)
	assert.Contains(t, body, `hwstatus_failures_total{kind="schema"} 2`)

	// Same config keeps the listener.
	srv.Apply(ctx, ServerConfig{Enabled: true, Addr: "127.0.0.1:0"})
	assert.Equal(t, addr, srv.Addr())

	srv.Apply(ctx, ServerConfig{Enabled: false})
	assert.Empty(t, srv.Addr())
}
