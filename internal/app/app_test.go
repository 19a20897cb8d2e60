package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwstatusbot/internal/config"
	"hwstatusbot/internal/homework"
)

func noEnv(string) (string, bool) { return "", false }

func writeConfig(t *testing.T, dir string, cfg *config.Config) string {
	t.Helper()
	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func emptyEnvFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func baseConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Logging.Console = false
	cfg.Logging.File.Path = filepath.Join(dir, "main.log")
	return cfg
}

type sentMessages struct {
	mu    sync.Mutex
	texts []string
	chats []string
}

func (s *sentMessages) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func fakeBotAPI(t *testing.T, sent *sentMessages) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var params map[string]any
		_ = json.Unmarshal(body, &params)
		text, _ := params["text"].(string)
		chat, _ := params["chat_id"].(string)
		sent.mu.Lock()
		sent.texts = append(sent.texts, text)
		sent.chats = append(sent.chats, chat)
		n := len(sent.texts)
		sent.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"message_id": n,
				"date":       time.Now().Unix(),
				"chat":       map[string]any{"id": 555, "type": "private"},
				"text":       text,
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewAbortsOnMissingCredentialsBeforeFetching(t *testing.T) {
	var hits atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(api.Close)

	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Practicum.Endpoint = api.URL
	cfg.Telegram.Token = "t"

	a, err := New(Options{
		ConfigPath: writeConfig(t, dir, cfg),
		EnvFile:    emptyEnvFile(t, dir),
		Lookup:     noEnv,
	})
	require.Nil(t, a)
	var ce *config.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"practicum.token", "telegram.chat_id"}, ce.Missing)
	assert.Zero(t, hits.Load())

	logged, err := os.ReadFile(cfg.Logging.File.Path)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "required settings missing")
}

func TestNewRejectsMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"poll": {"every": "1m"}}`), 0o600))

	_, err := New(Options{ConfigPath: path, EnvFile: emptyEnvFile(t, dir), Lookup: noEnv})
	require.Error(t, err)
	var ce *config.ConfigError
	assert.False(t, errors.As(err, &ce))
}

func TestRunDeliversStatusChangeAndNotifiesSystemd(t *testing.T) {
	var fetches atomic.Int32
	var gotAuth atomic.Value
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"homeworks": [{"homework_name": "hw05_final", "status": "approved"}], "current_date": 1700000000}`))
	}))
	t.Cleanup(api.Close)

	sent := &sentMessages{}
	bot := fakeBotAPI(t, sent)

	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Practicum.Endpoint = api.URL
	cfg.Telegram.APIURL = bot.URL
	cfg.Poll.Interval = "20ms"
	cfg.Storage = &config.StorageConfig{Driver: "file", Path: filepath.Join(dir, "journal.jsonl")}

	var (
		sdMu   sync.Mutex
		states []string
	)
	a, err := New(Options{
		ConfigPath: writeConfig(t, dir, cfg),
		EnvFile:    emptyEnvFile(t, dir),
		Lookup: func(k string) (string, bool) {
			v, ok := map[string]string{"YAPRACTICUM_TOKEN": "p-secret", "TGBOT_TOKEN": "123:abc", "MY_CHAT_ID": "555"}[k]
			return v, ok
		},
		SdNotify: func(state string) (bool, error) {
			sdMu.Lock()
			states = append(states, state)
			sdMu.Unlock()
			return true, nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return fetches.Load() >= 3 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	require.NoError(t, a.Close(closeCtx))

	assert.Equal(t, "OAuth p-secret", gotAuth.Load())
	// the status never changes after the first poll
	assert.Equal(t, []string{homework.FormatMessage("hw05_final", homework.StatusApproved)}, sent.all())
	assert.Equal(t, []string{"555"}, sent.chats)

	sdMu.Lock()
	defer sdMu.Unlock()
	require.NotEmpty(t, states)
	assert.Equal(t, "READY=1", states[0])
	assert.Equal(t, "STOPPING=1", states[len(states)-1])
	assert.Contains(t, states, "WATCHDOG=1")
	assert.Contains(t, states, "STATUS=polling every 20ms")

	journal, err := os.ReadFile(filepath.Join(dir, "journal.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(journal)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"delivered":true`)
}

func TestReloadTogglesMetricsListener(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	a, err := New(Options{
		ConfigPath: writeConfig(t, dir, cfg),
		EnvFile:    emptyEnvFile(t, dir),
		Lookup: func(k string) (string, bool) {
			v, ok := map[string]string{"PRACTICUM_TOKEN": "p", "TELEGRAM_TOKEN": "1:t", "TELEGRAM_CHAT_ID": "1"}[k]
			return v, ok
		},
		SdNotify: func(string) (bool, error) { return false, nil },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	assert.Empty(t, a.MetricsAddr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := make(chan *config.Config, 1)
	go a.consumeReloads(ctx, sub)

	next := *a.cfgm.Get()
	next.Metrics = config.MetricsConfig{Enabled: true, Addr: "127.0.0.1:0"}
	sub <- &next

	require.Eventually(t, func() bool { return a.MetricsAddr() != "" }, 5*time.Second, 10*time.Millisecond)
	resp, err := http.Get("http://" + a.MetricsAddr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestResolveFixesFromDateAtStartup(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cfg := config.Default()
	cfg.Poll.Lookback = "1h"

	s, err := resolve(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000-3600), s.poll.Since)
	assert.Equal(t, 10*time.Minute, s.poll.Interval)

	cfg.Poll.Interval = "6s"
	s, err = resolve(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, s.poll.Interval)
	cfg.Poll.Interval = ""
	assert.Equal(t, homework.EmptyIsError, s.empty)
	assert.Empty(t, s.storage.Driver)

	cfg.Storage = &config.StorageConfig{Driver: "SQLite", Path: "x.db"}
	s, err = resolve(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.storage.Driver)
	assert.Equal(t, time.Second, s.storage.BusyTimeout)
}
