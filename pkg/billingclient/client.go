// Package billingclient talks to the billing service and hands each completed response to
// billingresp. HTTP error statuses are not transport failures: they reach the caller as an
// invalid *billingresp.Response.
package billingclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"

	"github.com/r9s-ai/open-billing-client/internal/logx"
	"github.com/r9s-ai/open-billing-client/internal/version"
	"github.com/r9s-ai/open-billing-client/pkg/billingresp"
)

type Config struct {
	BaseURL     string
	ProductCode string
	Username    string
	Password    string
	// Format is the encoding segment of every path: "json" or "xml".
	Format     string
	Timeout    time.Duration
	RetryCount int
}

type Client struct {
	http     *resty.Client
	cfg      Config
	logger   logx.Logger
	respOpts []billingresp.Option
}

type Option func(*Client)

func WithLogger(l logx.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithResponseOptions are passed to billingresp.New for every response.
func WithResponseOptions(opts ...billingresp.Option) Option {
	return func(c *Client) { c.respOpts = append(c.respOpts, opts...) }
}

// WithHTTPClient replaces the underlying *http.Client (its Timeout is overridden by Config.Timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got: %s", cfg.BaseURL)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Format != "json" && cfg.Format != "xml" {
		return nil, fmt.Errorf("format must be json or xml, got: %s", cfg.Format)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		http:   resty.New(),
		cfg:    cfg,
		logger: logx.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.
		SetBaseURL(strings.TrimRight(base.String(), "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", version.UserAgent()).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryCondition)
	if cfg.Username != "" || cfg.Password != "" {
		c.http.SetBasicAuth(cfg.Username, cfg.Password)
	}
	return c, nil
}

// retryCondition retries network failures and the service's transient statuses.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout
}

func (c *Client) ProductCode() string { return c.cfg.ProductCode }

// Do performs one request. params, when non-empty, are sent as a form body and switch the
// method to POST. The returned error is only set for transport failures.
func (c *Client) Do(ctx context.Context, path string, params url.Values) (billingresp.Payload, error) {
	req := c.http.R().SetContext(ctx)
	method := http.MethodGet
	if len(params) > 0 {
		method = http.MethodPost
		req.SetFormDataFromValues(params)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return billingresp.Payload{}, fmt.Errorf("billing request %s %s: %w", method, path, err)
	}

	raw := resp.Body()
	payload := billingresp.Payload{
		StatusCode: resp.StatusCode(),
		RawBody:    string(raw),
		Body:       decodeBody(raw, resp.Header().Get("Content-Type")),
	}
	c.logger.Info(logx.FormatRequestLine(resp.ReceivedAt(), payload.StatusCode, resp.Time(), method, path, map[string]any{
		"bytes":   len(raw),
		"decoded": payload.Body != nil,
	}))
	return payload, nil
}

// decodeBody decodes a JSON object body. Anything else yields nil, which makes the
// response fall back to reading RawBody as XML.
func decodeBody(raw []byte, contentType string) any {
	if strings.Contains(strings.ToLower(contentType), "xml") {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil
	}
	return out
}

// Get performs the request and normalizes the result.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*billingresp.Response, error) {
	p, err := c.Do(ctx, path, params)
	if err != nil {
		return nil, err
	}
	opts := append([]billingresp.Option{billingresp.WithLogger(c.logger)}, c.respOpts...)
	return billingresp.New(p, opts...), nil
}

// Path builds "/{format}/{section}/{action}/productCode/{code}" followed by key/value
// pairs. Empty values are skipped.
func (c *Client) Path(section, action string, kv ...string) string {
	var b strings.Builder
	b.WriteString("/" + c.cfg.Format + "/" + section + "/" + action)
	b.WriteString("/productCode/" + url.PathEscape(c.cfg.ProductCode))
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		b.WriteString("/" + kv[i] + "/" + url.PathEscape(kv[i+1]))
	}
	return b.String()
}

// Plans fetches every plan of the product.
func (c *Client) Plans(ctx context.Context) (*billingresp.Response, error) {
	return c.Get(ctx, c.Path("plans", "get"), nil)
}

// Plan fetches one plan by code.
func (c *Client) Plan(ctx context.Context, code string) (*billingresp.Response, error) {
	return c.Get(ctx, c.Path("plans", "get", "code", code), nil)
}

// Customers fetches customers, optionally filtered (e.g. subscriptionStatus=activeOnly).
func (c *Client) Customers(ctx context.Context, filter url.Values) (*billingresp.Response, error) {
	return c.Get(ctx, c.Path("customers", "get"), filter)
}

func (c *Client) Customer(ctx context.Context, code string) (*billingresp.Response, error) {
	return c.Get(ctx, c.Path("customers", "get", "code", code), nil)
}

func (c *Client) Promotions(ctx context.Context) (*billingresp.Response, error) {
	return c.Get(ctx, c.Path("promotions", "get"), nil)
}

func (c *Client) Promotion(ctx context.Context, code string) (*billingresp.Response, error) {
	return c.Get(ctx, c.Path("promotions", "get", "code", code), nil)
}
