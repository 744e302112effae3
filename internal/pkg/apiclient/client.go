package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for authenticated calls and is
// notified after every authenticated success so stores can be re-mirrored.
type TokenSource interface {
	Token() string
	Authenticated(token string)
}

// Client is the base REST client shared by every platform surface.
type Client struct {
	baseURL string
	ua      string
	tokens  TokenSource
	http    *http.Client
}

// New creates a base client for the given API root.
func New(baseURL string, tokens TokenSource, timeout time.Duration, ua string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      ua,
		tokens:  tokens,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Get issues an authenticated GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// PostPublic issues an unauthenticated POST. Only the login and registration
// routes accept calls without a token.
func (c *Client) PostPublic(ctx context.Context, path string, body, out interface{}) error {
	return c.exchange(ctx, http.MethodPost, path, "", body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
		if token == "" {
			return &APIError{Kind: KindAuth, Message: "no session token, log in first"}
		}
	}
	return c.exchange(ctx, method, path, token, body, out)
}

func (c *Client) exchange(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindValidation, Message: "encode request body", cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Kind: KindValidation, Message: "build request", cause: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: "read response body", Retryable: true, cause: err}
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if c.tokens != nil && token != "" {
			c.tokens.Authenticated(token)
		}
		if out == nil {
			return nil
		}
		return decodeBody(raw, out)
	}

	return classifyStatus(resp.StatusCode, raw)
}

// envelope matches the {success,data,error} wrapper some routes use.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
	Message string          `json:"message"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeBody tolerates both enveloped and bare JSON response bodies. The API
// is inconsistent across routes, so sniff for the wrapper before committing.
func decodeBody(raw []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil && len(env.Data) > 0 {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Kind: KindServer, Message: "decode response body", cause: err}
	}
	return nil
}

// conflictHints are the message fragments the API uses instead of a 409 on
// some routes.
var conflictHints = []string{
	"already friends",
	"already sent",
	"already exists",
	"already accepted",
	"already responded",
}

func classifyStatus(status int, raw []byte) error {
	msg := extractMessage(raw)

	lower := strings.ToLower(msg)
	for _, hint := range conflictHints {
		if strings.Contains(lower, hint) {
			return &APIError{Kind: KindConflict, Status: status, Message: msg}
		}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &APIError{Kind: KindAuth, Status: status, Message: msg}
	case status == http.StatusConflict:
		return &APIError{Kind: KindConflict, Status: status, Message: msg}
	case status == http.StatusNotFound || status == http.StatusMethodNotAllowed:
		return &APIError{Kind: KindNotFound, Status: status, Message: msg}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &APIError{Kind: KindValidation, Status: status, Message: msg}
	case status >= 500:
		return &APIError{Kind: KindServer, Status: status, Message: msg, Retryable: true}
	default:
		return &APIError{Kind: KindServer, Status: status, Message: msg}
	}
}

// extractMessage digs a human-readable message out of an error body.
func extractMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Error != nil && env.Error.Message != "" {
			return env.Error.Message
		}
		if env.Message != "" {
			return env.Message
		}
	}
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return "request failed"
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return body
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return &APIError{Kind: KindNetwork, Message: "request timed out", Retryable: true, cause: err}
	}
	if isNetworkError(err) {
		return &APIError{Kind: KindNetwork, Message: "network unreachable", Retryable: true, cause: err}
	}
	return &APIError{Kind: KindNetwork, Message: "request failed", cause: err}
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}
