// Package gateway is the portal's only channel to the REST backend. It
// attaches the session's bearer credential, enforces a fixed timeout,
// normalises error payloads into *APIError and hands authentication
// rejections back to the session store.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
	"github.com/vinodhini/portal/internal/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Config captures the backend location and transport settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport is the base round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client talks to the backend on behalf of one session. A nil creds makes an
// anonymous client, used for login.
type Client struct {
	baseURL string
	http    *http.Client
	creds   ports.Credentials
	log     zerolog.Logger
}

// New returns a Client bound to creds.
func New(cfg Config, creds ports.Credentials, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{creds: creds, base: base},
		},
		creds: creds,
		log:   log,
	}
}

// NewFactory returns a ports.BackendFactory producing Clients that share cfg.
func NewFactory(cfg Config, log zerolog.Logger) ports.BackendFactory {
	return func(creds ports.Credentials) ports.Backend {
		return New(cfg, creds, log)
	}
}

// bearerTransport adds the session credential when one is held.
type bearerTransport struct {
	creds ports.Credentials
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.creds == nil {
		return t.base.RoundTrip(req)
	}
	token := t.creds.Credential()
	if token == "" {
		return t.base.RoundTrip(req)
	}
	ot := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return ot.RoundTrip(req)
}

// call describes one backend request.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// denied is shown on a 403 that carries no message of its own.
	denied string
}

// envelope is the backend's response wrapper.
type envelope[T any] struct {
	Success    *bool        `json:"success,omitempty"`
	Data       T            `json:"data"`
	Message    string       `json:"message,omitempty"`
	Pagination *domain.Page `json:"pagination,omitempty"`
}

// do performs c and decodes the enveloped payload into out when non-nil.
func (cl *Client) do(ctx context.Context, c call, out any) error {
	var body io.Reader
	if c.body != nil {
		buf, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", c.method, c.path, err)
		}
		body = bytes.NewReader(buf)
	}

	target := cl.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, c.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", c.method, c.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := cl.http.Do(req)
	if err != nil {
		metrics.GatewayRequestDuration.WithLabelValues(c.method, "error").Observe(time.Since(start).Seconds())
		cl.log.Warn().Err(err).Str("method", c.method).Str("path", c.path).Msg("backend unreachable")
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, c.method, c.path, err)
	}
	defer resp.Body.Close()
	metrics.GatewayRequestDuration.WithLabelValues(c.method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp, c.denied)
		if resp.StatusCode == http.StatusUnauthorized && cl.creds != nil {
			cl.creds.Invalidate(ctx, apiErr)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrBackend, c.method, c.path, err)
	}
	return nil
}

func decodeError(resp *http.Response, denied string) *APIError {
	var b errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&b)
	msg := b.text()
	if msg == "" && resp.StatusCode == http.StatusForbidden && denied != "" {
		msg = denied
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// listQuery encodes the common list parameters.
func listQuery(p ports.ListParams) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Role != "" {
		q.Set("role", p.Role)
	}
	if p.ClientID != "" {
		q.Set("client_id", p.ClientID)
	}
	return q
}

func pageOf(p *domain.Page) domain.Page {
	if p == nil {
		return domain.Page{}
	}
	return *p
}

func escape(id string) string { return url.PathEscape(id) }

var (
	_ ports.Backend     = (*Client)(nil)
	_ ports.AuthGateway = (*Client)(nil)
)
