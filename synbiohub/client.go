package synbiohub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cellocad/cello-webapp/sbol"
)

// Defaults applied by NewClient.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxContentSize = 64 << 20
	DefaultUserAgent      = "cello-webapp"
)

// TokenHeader carries the SynBioHub user token.
const TokenHeader = "X-authorization"

// StatusError is returned for non-2xx registry responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry %s: HTTP %d: %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Observer receives the outcome of every registry request.
type Observer interface {
	ObserveRegistryRequest(op string, status int, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	// URL is the registry base URL. Relative collection references resolve
	// against it.
	URL string

	// Token is sent in the X-authorization header when set.
	Token string

	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxContentSize    int64
	UserAgent         string

	// AllowPrivate permits HTTP and private network hosts.
	AllowPrivate bool
}

// Client talks to a SynBioHub registry.
type Client struct {
	base         *url.URL
	token        string
	userAgent    string
	maxSize      int64
	allowPrivate bool
	limiter      *rate.Limiter
	http         *http.Client
	observer     Observer
	logger       *slog.Logger
}

// Option configures optional Client collaborators.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the request observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a registry client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := ValidateURL(cfg.URL, cfg.AllowPrivate); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxContentSize <= 0 {
		cfg.MaxContentSize = DefaultMaxContentSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		base:         base,
		token:        cfg.Token,
		userAgent:    cfg.UserAgent,
		maxSize:      cfg.MaxContentSize,
		allowPrivate: cfg.AllowPrivate,
		limiter:      rate.NewLimiter(limit, burst),
		logger:       slog.Default(),
	}
	c.http = &http.Client{
		Transport: newTransport(cfg.Timeout, cfg.AllowPrivate),
		Timeout:   cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			if err := ValidateURL(req.URL.String(), cfg.AllowPrivate); err != nil {
				return fmt.Errorf("redirect blocked: %w", err)
			}
			return nil
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newTransport returns a transport whose dialer refuses private addresses
// after DNS resolution unless allowPrivate is set.
func newTransport(timeout time.Duration, allowPrivate bool) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	dial := dialer.DialContext
	if !allowPrivate {
		dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, fmt.Errorf("invalid address: %w", err)
			}

			ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, fmt.Errorf("DNS lookup failed: %w", err)
			}
			for _, ipAddr := range ips {
				if IsPrivateIP(ipAddr.IP) {
					return nil, fmt.Errorf("connection to private IP %s is not allowed", ipAddr.IP)
				}
			}

			for _, ipAddr := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ipAddr.IP.String(), port))
				if err == nil {
					return conn, nil
				}
			}
			return nil, fmt.Errorf("failed to connect to any resolved IP")
		}
	}

	return &http.Transport{
		DialContext:           dial,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}

// CloseIdleConnections closes connections left idle by earlier requests.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Resolve turns a collection reference into an absolute URL. Absolute
// references are returned unchanged.
func (c *Client) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	return c.base.ResolveReference(u).String(), nil
}

// DocumentURL returns the SBOL download URL of a collection.
func (c *Client) DocumentURL(collection string) (string, error) {
	abs, err := c.Resolve(collection)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(abs, "/") + "/sbol", nil
}

// FetchDocument downloads and decodes the SBOL document of a collection.
func (c *Client) FetchDocument(ctx context.Context, collection string) (*sbol.Document, error) {
	u, err := c.DocumentURL(collection)
	if err != nil {
		return nil, err
	}
	body, err := c.get(ctx, "document", u, "application/rdf+xml")
	if err != nil {
		return nil, err
	}
	doc, err := sbol.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}
	c.logger.Debug("Fetched SBOL document", "url", u, "bytes", len(body))
	return doc, nil
}

// FetchAttachment downloads the content of an attachment from its source,
// or from the attachment's download endpoint when it has none.
func (c *Client) FetchAttachment(ctx context.Context, att *sbol.Attachment) ([]byte, error) {
	src := att.Source
	if src == "" {
		src = strings.TrimRight(att.URI, "/") + "/download"
	}
	u, err := c.Resolve(src)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, "attachment", u, "application/json, */*;q=0.5")
}

func (c *Client) get(ctx context.Context, op, rawURL, accept string) ([]byte, error) {
	if err := ValidateURL(rawURL, c.allowPrivate); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxSize {
		return nil, fmt.Errorf("content too large (exceeds %d bytes)", c.maxSize)
	}
	return body, nil
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRegistryRequest(op, status, time.Since(start))
	}
}
