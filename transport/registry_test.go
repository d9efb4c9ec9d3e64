package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-verify/core"
)

type staticAdapter struct {
	kind string
}

func (a staticAdapter) Kind() string { return a.kind }

func (a staticAdapter) Do(context.Context, core.TransportRequest) (core.TransportResponse, error) {
	return core.TransportResponse{StatusCode: 200}, nil
}

func TestRegistry_RegisterGetAndListDeterministic(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(staticAdapter{kind: "rest"}); err != nil {
		t.Fatalf("register rest adapter: %v", err)
	}
	if err := registry.Register(staticAdapter{kind: "fake"}); err != nil {
		t.Fatalf("register fake adapter: %v", err)
	}

	if _, ok := registry.Get("REST"); !ok {
		t.Fatalf("expected rest adapter lookup to be case insensitive")
	}

	listed := registry.List()
	if len(listed) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(listed))
	}
	if listed[0].Kind() != "fake" || listed[1].Kind() != "rest" {
		t.Fatalf("expected deterministic sorted order, got %q and %q", listed[0].Kind(), listed[1].Kind())
	}

	if err := registry.Register(staticAdapter{kind: "rest"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_BuildFallsBackToUnsupportedAdapter(t *testing.T) {
	registry := NewDefaultRegistry()
	if _, ok := registry.Get(KindREST); !ok {
		t.Fatalf("expected default registry to carry the rest adapter")
	}

	adapter, err := registry.Build("grpc", map[string]any{"reason": "not wired"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if adapter.Kind() != "grpc" {
		t.Fatalf("expected grpc kind, got %q", adapter.Kind())
	}
	_, err = adapter.Do(context.Background(), core.TransportRequest{})
	if err == nil || !strings.Contains(err.Error(), "not wired") {
		t.Fatalf("expected unsupported adapter error with reason, got %v", err)
	}
}

func TestRegistry_RegisterFactoryBuildsCustomAdapter(t *testing.T) {
	registry := NewRegistry()
	if err := registry.RegisterFactory("custom", func(config map[string]any) (core.TransportAdapter, error) {
		kind, _ := config["kind"].(string)
		if kind == "" {
			kind = "custom"
		}
		return staticAdapter{kind: kind}, nil
	}); err != nil {
		t.Fatalf("register adapter factory: %v", err)
	}

	adapter, err := registry.Build("custom", map[string]any{"kind": "signed"})
	if err != nil {
		t.Fatalf("build adapter from factory: %v", err)
	}
	if adapter.Kind() != "signed" {
		t.Fatalf("expected signed adapter from factory, got %q", adapter.Kind())
	}
}

func TestRegistry_RejectsInvalidRegistrations(t *testing.T) {
	registry := NewRegistry()
	factory := func(map[string]any) (core.TransportAdapter, error) { return nil, nil }

	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil adapter to be rejected")
	}
	if err := registry.RegisterFactory(" ", factory); err == nil {
		t.Fatalf("expected empty kind to be rejected")
	}
	if err := registry.RegisterFactory("custom", nil); err == nil {
		t.Fatalf("expected nil factory to be rejected")
	}
	if err := registry.RegisterFactory("custom", factory); err != nil {
		t.Fatalf("register factory: %v", err)
	}
	err := registry.RegisterFactory("CUSTOM", factory)
	assertRichError(t, err, goerrors.CategoryBadInput, core.VerifyErrorBadInput, http.StatusBadRequest)

	_, err = registry.Build("custom", nil)
	assertRichError(t, err, goerrors.CategoryInternal, core.VerifyErrorInternal, http.StatusInternalServerError)

	var missing *Registry
	if _, err := missing.Build("rest", nil); err == nil {
		t.Fatalf("expected nil registry to fail")
	}
}

func TestRegistry_AdapterWinsOverFactory(t *testing.T) {
	registry := NewRegistry()
	if err := registry.RegisterFactory("rest", func(map[string]any) (core.TransportAdapter, error) {
		return staticAdapter{kind: "from-factory"}, nil
	}); err != nil {
		t.Fatalf("register factory: %v", err)
	}
	if err := registry.Register(staticAdapter{kind: "rest"}); err != nil {
		t.Fatalf("register adapter alongside factory: %v", err)
	}
	adapter, err := registry.Build("rest", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if adapter.Kind() != "rest" {
		t.Fatalf("expected registered adapter, got %q", adapter.Kind())
	}
}

func TestRESTAdapter_DoSendsMethodHeadersAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if got := r.Header.Get("X-Amz-Target"); got != "Service.Operation" {
			t.Errorf("expected target header, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-amz-json-1.1" {
			t.Errorf("expected default content type, got %q", got)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		if string(body) != `{"AccessToken":"t"}` {
			t.Errorf("unexpected request body %q", string(body))
		}
		w.Header().Set("X-Amzn-Requestid", "req-1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.DefaultHeaders["Content-Type"] = "application/x-amz-json-1.1"
	result, err := adapter.Do(context.Background(), core.TransportRequest{
		URL:     server.URL,
		Headers: map[string]string{"X-Amz-Target": "Service.Operation"},
		Body:    []byte(`{"AccessToken":"t"}`),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("perform rest request: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Fatalf("expected ok status, got %d", result.StatusCode)
	}
	if result.Metadata["request_id"] != "req-1" {
		t.Fatalf("expected request id metadata, got %#v", result.Metadata)
	}
	if result.Headers["X-Amzn-Requestid"] != "req-1" {
		t.Fatalf("expected flattened response header, got %#v", result.Headers)
	}
}

func TestRESTAdapter_DoAppendsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected query value, got %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	result, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: http.MethodGet,
		URL:    server.URL,
		Query:  map[string]string{"page": "2"},
	})
	if err != nil {
		t.Fatalf("perform rest request: %v", err)
	}
	if result.StatusCode != http.StatusNoContent {
		t.Fatalf("expected no content, got %d", result.StatusCode)
	}
}

func TestNewRESTAdapter_DefaultClientTimeout(t *testing.T) {
	adapter := NewRESTAdapter(nil)
	httpClient, ok := adapter.Client.(*http.Client)
	if !ok {
		t.Fatalf("expected default http client implementation")
	}
	if httpClient.Timeout != defaultRESTClientTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultRESTClientTimeout, httpClient.Timeout)
	}
	if adapter.MaxResponseBodyBytes != defaultRESTResponseBodyLimit {
		t.Fatalf("expected default response body limit %d, got %d", defaultRESTResponseBodyLimit, adapter.MaxResponseBodyBytes)
	}
}

func TestRESTAdapter_RequestBodyLimitOverridesAdapterLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 1024

	_, err := adapter.Do(context.Background(), core.TransportRequest{
		URL:                  server.URL,
		MaxResponseBodyBytes: 4,
	})
	if err == nil {
		t.Fatalf("expected response body limit error")
	}
	if !strings.Contains(err.Error(), "response body exceeds limit of 4 bytes") {
		t.Fatalf("unexpected error: %v", err)
	}
}
