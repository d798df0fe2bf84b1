package toolkit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type capturedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   string
}

func newTestClient(t *testing.T, tools []string, status int, respBody string) (*Client, func() capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var last capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		last = capturedRequest{method: r.Method, path: r.URL.EscapedPath(), query: r.URL.RawQuery, header: r.Header.Clone(), body: string(b)}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{AccessToken: "tok", Configuration: NewConfiguration(tools)}, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return c, func() capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{}); !errors.Is(err, ErrMissingAccessToken) {
		t.Fatalf("expected ErrMissingAccessToken, got %v", err)
	}
}

func TestNewClient_BaseURLFromContext(t *testing.T) {
	t.Parallel()

	cfg := NewConfiguration([]string{"orders.get"})
	c, err := NewClient(Config{AccessToken: "tok", Configuration: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if c.baseURL != SandboxBaseURL {
		t.Fatalf("expected sandbox by default, got %s", c.baseURL)
	}

	cfg.Context = &Context{Sandbox: false}
	c, err = NewClient(Config{AccessToken: "tok", Configuration: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if c.baseURL != ProductionBaseURL {
		t.Fatalf("expected production, got %s", c.baseURL)
	}
}

func TestClient_ToolsOnlyEnabled(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, []string{"orders.get", "invoices.create"}, http.StatusOK, `{}`)
	var names []string
	for _, tool := range c.Tools() {
		names = append(names, tool.Name)
	}
	if strings.Join(names, ",") != "invoices_create,orders_get" {
		t.Fatalf("unexpected tools %q", names)
	}
}

func TestClient_CallGetWithPathParam(t *testing.T) {
	t.Parallel()

	c, last := newTestClient(t, []string{"orders.get"}, http.StatusOK, `{"id":"O-1","status":"APPROVED"}`)
	res, err := c.Call(context.Background(), "orders_get", json.RawMessage(`{"order_id":"O 1/x"}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || res.Text != `{"id":"O-1","status":"APPROVED"}` {
		t.Fatalf("unexpected result %+v", res)
	}

	req := last()
	if req.method != http.MethodGet || req.path != "/v2/checkout/orders/O%201%2Fx" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if got := req.header.Get("Authorization"); got != "Bearer tok" {
		t.Fatalf("unexpected authorization %q", got)
	}
	if req.body != "" {
		t.Fatalf("GET should not carry a body, got %q", req.body)
	}
}

func TestClient_CallPostForwardsBody(t *testing.T) {
	t.Parallel()

	c, last := newTestClient(t, []string{"invoices.create"}, http.StatusCreated, `{"id":"INV2-1"}`)
	_, err := c.Call(context.Background(), "invoices_create", json.RawMessage(`{"body":{"detail":{"currency_code":"USD"}}}`))
	if err != nil {
		t.Fatal(err)
	}

	req := last()
	if req.method != http.MethodPost || req.path != "/v2/invoicing/invoices" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if req.body != `{"detail":{"currency_code":"USD"}}` {
		t.Fatalf("unexpected body %q", req.body)
	}
	if req.header.Get("Content-Type") != "application/json" {
		t.Fatalf("missing content type")
	}
	if req.header.Get("PayPal-Request-Id") == "" {
		t.Fatalf("POST requests should carry an idempotency key")
	}
}

func TestClient_CallQueryParameters(t *testing.T) {
	t.Parallel()

	c, last := newTestClient(t, []string{"transactions.list"}, http.StatusOK, `{"transaction_details":[]}`)
	_, err := c.Call(context.Background(), "transactions_list", json.RawMessage(`{"start_date":"2024-01-01T00:00:00Z","end_date":"2024-01-31T00:00:00Z","page_size":10}`))
	if err != nil {
		t.Fatal(err)
	}
	req := last()
	want := "end_date=2024-01-31T00%3A00%3A00Z&page_size=10&start_date=2024-01-01T00%3A00%3A00Z"
	if req.query != want {
		t.Fatalf("got query %q, want %q", req.query, want)
	}
}

func TestClient_CallAPIErrorIsToolError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, []string{"orders.get"}, http.StatusNotFound, `{"name":"RESOURCE_NOT_FOUND"}`)
	res, err := c.Call(context.Background(), "orders_get", json.RawMessage(`{"order_id":"missing"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(res.Text, "404") || !strings.Contains(res.Text, "RESOURCE_NOT_FOUND") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClient_CallRejectsBadInput(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, []string{"orders.get"}, http.StatusOK, `{}`)

	if _, err := c.Call(context.Background(), "orders_create", nil); !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound for disabled tool, got %v", err)
	}
	if _, err := c.Call(context.Background(), "orders_get", json.RawMessage(`{"order_id":"x","extra":1}`)); !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments for unknown member, got %v", err)
	}
	if _, err := c.Call(context.Background(), "orders_get", nil); !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments for missing path param, got %v", err)
	}
}

func TestClient_EmptyResponseBody(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, []string{"subscriptions.cancel"}, http.StatusNoContent, ``)
	res, err := c.Call(context.Background(), "subscriptions_cancel", json.RawMessage(`{"subscription_id":"I-1","body":{"reason":"done"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || !strings.Contains(res.Text, "204") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClient_CallRejectsMissingRequired(t *testing.T) {
	t.Parallel()

	c, last := newTestClient(t, []string{"transactions.list", "invoices.create"}, http.StatusOK, `{}`)

	_, err := c.Call(context.Background(), "transactions_list", json.RawMessage(`{"end_date":"2024-01-31T00:00:00Z"}`))
	if !errors.Is(err, ErrInvalidArguments) || !strings.Contains(err.Error(), "start_date") {
		t.Fatalf("expected missing start_date, got %v", err)
	}
	_, err = c.Call(context.Background(), "invoices_create", json.RawMessage(`{"body":null}`))
	if !errors.Is(err, ErrInvalidArguments) || !strings.Contains(err.Error(), "body") {
		t.Fatalf("expected null body to be rejected, got %v", err)
	}
	if req := last(); req.method != "" {
		t.Fatalf("no request should reach PayPal, got %s %s", req.method, req.path)
	}
}
