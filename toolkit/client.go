package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SandboxBaseURL is the PayPal REST endpoint used in sandbox mode.
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	// ProductionBaseURL is the PayPal REST endpoint used in production mode.
	ProductionBaseURL = "https://api-m.paypal.com"

	maxResponseBytes = 4 << 20
)

var (
	// ErrToolNotFound is returned by Call for tools that are unknown or not
	// enabled.
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidArguments is returned by Call when the arguments do not match
	// the tool's schema.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrMissingAccessToken is returned by NewClient without an access token.
	ErrMissingAccessToken = errors.New("PayPal access token not provided")
)

// Result is the outcome of a tool call. IsError marks results the PayPal API
// rejected; they are still delivered to the client as tool output.
type Result struct {
	Text    string
	IsError bool
}

// Toolkit is the set of tools a server exposes.
type Toolkit interface {
	// Tools lists the enabled tools in a stable order.
	Tools() []Tool
	// Call invokes the tool with the given MCP name.
	Call(ctx context.Context, name string, args json.RawMessage) (*Result, error)
}

// Config configures a Client.
type Config struct {
	AccessToken   string
	Configuration Configuration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL overrides the PayPal endpoint chosen from the sandbox flag.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.l = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent to PayPal.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client is a Toolkit backed by the PayPal REST API.
type Client struct {
	token     string
	baseURL   string
	userAgent string
	http      *http.Client
	l         *slog.Logger

	tools  []Tool
	byName map[string]Tool
}

var _ Toolkit = (*Client)(nil)

// NewClient builds a Client exposing the operations enabled in cfg.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	c := &Client{
		token:     cfg.AccessToken,
		baseURL:   SandboxBaseURL,
		userAgent: "paypal-mcp-server-go",
		http:      &http.Client{Timeout: 60 * time.Second},
		l:         slog.Default(),
	}
	if cfg.Configuration.Context != nil && !cfg.Configuration.Context.Sandbox {
		c.baseURL = ProductionBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tools = cfg.Configuration.EnabledTools()
	c.byName = make(map[string]Tool, len(c.tools))
	for _, t := range c.tools {
		c.byName[t.Name] = t
	}
	return c, nil
}

// Tools implements Toolkit.
func (c *Client) Tools() []Tool {
	return append([]Tool(nil), c.tools...)
}

// Call implements Toolkit.
func (c *Client) Call(ctx context.Context, name string, raw json.RawMessage) (*Result, error) {
	t, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if len(bytes.TrimSpace(raw)) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := t.args.check(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	var args map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	req, err := c.newRequest(ctx, t, args)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal %s: %w", t.ID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("paypal %s: read response: %w", t.ID, err)
	}
	c.l.DebugContext(ctx, "paypal call",
		slog.String("tool", t.ID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return &Result{Text: fmt.Sprintf("PayPal API returned %s: %s", resp.Status, bytes.TrimSpace(data)), IsError: true}, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Result{Text: fmt.Sprintf(`{"status":%q}`, resp.Status)}, nil
	}
	return &Result{Text: string(data)}, nil
}

func (c *Client) newRequest(ctx context.Context, t Tool, args map[string]any) (*http.Request, error) {
	path, err := expandPath(t.path, args)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if v, ok := args["body"]; ok {
		delete(args, "body")
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: body: %v", ErrInvalidArguments, err)
		}
		body = bytes.NewReader(b)
	} else if t.method != http.MethodGet {
		body = strings.NewReader("{}")
	}

	u := c.baseURL + path
	if len(args) > 0 {
		q := url.Values{}
		for k, v := range args {
			q.Set(k, queryValue(v))
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, t.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("paypal %s: build request: %w", t.ID, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.method == http.MethodPost {
		req.Header.Set("PayPal-Request-Id", uuid.NewString())
	}
	return req, nil
}

// expandPath substitutes {name} segments with path-escaped string arguments,
// removing the consumed arguments from args.
func expandPath(tmpl string, args map[string]any) (string, error) {
	var b strings.Builder
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		name := rest[open+1 : open+end]
		s, _ := args[name].(string)
		if s == "" {
			return "", fmt.Errorf("%w: %s is required", ErrInvalidArguments, name)
		}
		delete(args, name)
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(s))
		rest = rest[open+end+1:]
	}
}

func queryValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
