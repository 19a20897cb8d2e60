package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kit "hwstatusbot/internal/transport"
	logx "hwstatusbot/pkg/logx"
)

type botAPI struct {
	mu    sync.Mutex
	calls []map[string]any
	paths []string
	fail  bool
}

func (b *botAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var params map[string]any
	_ = json.Unmarshal(body, &params)

	b.mu.Lock()
	b.calls = append(b.calls, params)
	b.paths = append(b.paths, r.URL.Path)
	fail := b.fail
	n := len(b.calls)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": true,
		"result": map[string]any{
			"message_id": 100 + n,
			"date":       time.Now().Unix(),
			"chat":       map[string]any{"id": 42, "type": "private"},
			"text":       params["text"],
		},
	})
}

func newTestAdapter(t *testing.T, api *botAPI) *Adapter {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	a, err := New(Config{Token: "123:abc", APIURL: srv.URL, Timeout: time.Second}, logx.Nop())
	require.NoError(t, err)
	return a
}

func TestSendTextPostsSendMessage(t *testing.T) {
	api := &botAPI{}
	a := newTestAdapter(t, api)

	ref, err := a.SendText(context.Background(), kit.ChatTarget{ChatID: "42"}, "привет", nil)
	require.NoError(t, err)
	assert.Equal(t, "42", ref.ChatID)
	assert.Equal(t, 101, ref.MessageID)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "/bot123:abc/sendMessage", api.paths[0])
	assert.Equal(t, "42", api.calls[0]["chat_id"])
	assert.Equal(t, "привет", api.calls[0]["text"])
}

func TestSendTextSurfacesAPIError(t *testing.T) {
	api := &botAPI{fail: true}
	a := newTestAdapter(t, api)

	_, err := a.SendText(context.Background(), kit.ChatTarget{ChatID: "42"}, "hi", nil)
	require.Error(t, err)
}

func TestSendTextRejectsEmptyChat(t *testing.T) {
	api := &botAPI{}
	a := newTestAdapter(t, api)

	_, err := a.SendText(context.Background(), kit.ChatTarget{}, "hi", nil)
	require.Error(t, err)
	assert.Empty(t, api.calls)
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitText("short", 10))

	long := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
	assert.Equal(t, []string{"aaaaaa", "bbbbbb"}, splitText(long, 10))

	chunks := splitText(strings.Repeat("я", 25), 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, 10, len([]rune(chunks[0])))
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{}, logx.Nop())
	assert.Error(t, err)
}

func TestSendTextIsBoundedByClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	a, err := New(Config{Token: "123:abc", APIURL: srv.URL, Timeout: 100 * time.Millisecond}, logx.Nop())
	require.NoError(t, err)

	start := time.Now()
	_, err = a.SendText(context.Background(), kit.ChatTarget{ChatID: "42"}, "hello", nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}
