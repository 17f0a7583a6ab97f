package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "http://127.0.0.1:3000"
	defaultUserAgent = "comanda/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 64 << 10
)

// TokenSource yields the bearer token attached to each request. An empty
// token sends the request unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// AccessToken implements TokenSource.
func (f TokenFunc) AccessToken() string { return f() }

// Client talks to the cafeteria HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
	limiter   *rate.Limiter
	logger    *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRateLimit paces outgoing requests. Zero or negative disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger routes request diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// envelope is the wrapper every endpoint responds with.
type envelope struct {
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

// requestBody is an encoded payload plus its content type.
type requestBody struct {
	contentType string
	data        []byte
}

// Request performs method on path with an optional JSON payload and decodes
// the envelope's data field into dest when dest is non-nil.
func (c *Client) Request(ctx context.Context, method, path string, payload, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body, err := jsonBody(payload)
	if err != nil {
		return err
	}
	env, err := c.doURL(ctx, method, &url.URL{Path: path}, body)
	if err != nil {
		return err
	}
	return decodeData(method, path, env, dest)
}

func (c *Client) get(ctx context.Context, rel *url.URL, dest any) (envelope, error) {
	env, err := c.doURL(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return envelope{}, err
	}
	return env, decodeData(http.MethodGet, rel.Path, env, dest)
}

func jsonBody(payload any) (*requestBody, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &requestBody{contentType: "application/json", data: data}, nil
}

func decodeData(method, path string, env envelope, dest any) error {
	if dest == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return decodeError(method, path, err)
	}
	return nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body *requestBody) (envelope, error) {
	raw, err := c.send(ctx, method, rel, body)
	if err != nil {
		return envelope{}, err
	}
	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, decodeError(method, rel.Path, err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return envelope{}, &Error{Kind: KindAPI, Method: method, Path: rel.Path, Message: msg}
	}
	return env, nil
}

// send executes the request and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, method string, rel *url.URL, body *requestBody) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(method, rel.Path, err)
		}
	}

	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + rel.Path
	reqURL.RawQuery = rel.RawQuery
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body.data)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", rel.Path, "request_id", requestID, "err", err)
		return nil, transportError(method, rel.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request", "method", method, "path", rel.Path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		limited, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(method, rel.Path, resp.StatusCode, serverMessage(limited))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(method, rel.Path, err)
	}
	return raw, nil
}

func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return strings.TrimSpace(env.Message)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base_url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
