package practicum

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"hwstatusbot/internal/homework"
	logx "hwstatusbot/pkg/logx"
)

// DefaultEndpoint is the homework status API.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Client fetches homework statuses. It never retries; the poll loop's
// interval is the retry policy.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	log      logx.Logger
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("practicum token is empty")
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		endpoint: endpoint,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}, nil
}

// Fetch asks for statuses changed since the given unix timestamp.
//
// Errors are *homework.TransportError for network failures and unreadable
// or non-JSON bodies, and *homework.RemoteStatusError for any non-200 answer
// (whose body is discarded unread).
func (c *Client) Fetch(ctx context.Context, since int64) (homework.RawResponse, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &homework.TransportError{Op: "build request", Err: err}
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(since, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, &homework.TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &homework.TransportError{Op: "GET " + c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("status api answered",
		logx.Int("http_status", resp.StatusCode),
		logx.Duration("took", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &homework.RemoteStatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &homework.TransportError{Op: "read body", Err: err}
	}
	if !gjson.ValidBytes(body) {
		return nil, &homework.TransportError{Op: "decode body", Err: errors.New("malformed JSON payload")}
	}
	return homework.RawResponse(body), nil
}
