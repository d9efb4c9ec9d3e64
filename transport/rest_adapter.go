package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-verify/core"
)

const KindREST = "rest"

const (
	defaultRESTClientTimeout           = 30 * time.Second
	defaultRESTResponseBodyLimit int64 = 1 << 20

	requestIDHeader = "X-Amzn-Requestid"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTAdapter sends one HTTP request per Do call. It never retries.
type RESTAdapter struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewRESTAdapter(client HTTPDoer) *RESTAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultRESTClientTimeout}
	}
	return &RESTAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultRESTResponseBodyLimit,
	}
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

func (a *RESTAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, internal(
			http.StatusInternalServerError,
			"transport: rest adapter requires an http client",
			map[string]any{"adapter": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := a.newRequest(ctx, req)
	if err != nil {
		return core.TransportResponse{}, err
	}
	requestMeta := map[string]any{"adapter": KindREST, "method": httpReq.Method, "url": httpReq.URL.String()}

	startedAt := time.Now()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		return core.TransportResponse{}, upstream("transport: execute http request", err, requestMeta)
	}
	defer httpRes.Body.Close()

	body, err := readBody(httpRes, bodyLimit(req.MaxResponseBodyBytes, a.MaxResponseBodyBytes))
	if err != nil {
		return core.TransportResponse{}, err
	}

	metadata := map[string]any{"kind": KindREST, "duration_ms": time.Since(startedAt).Milliseconds()}
	if requestID := httpRes.Header.Get(requestIDHeader); requestID != "" {
		metadata["request_id"] = requestID
	}
	return core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       body,
		Metadata:   metadata,
	}, nil
}

// newRequest defaults the method to POST and layers request headers over the
// adapter defaults.
func (a *RESTAdapter) newRequest(ctx context.Context, req core.TransportRequest) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodPost
	}
	target, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(req.Body))
	if err != nil {
		return nil, badInput("transport: create http request", err,
			map[string]any{"adapter": KindREST, "method": method, "url": target})
	}
	for _, headers := range []map[string]string{a.DefaultHeaders, req.Headers} {
		for key, value := range headers {
			if key = strings.TrimSpace(key); key != "" {
				httpReq.Header.Set(key, strings.TrimSpace(value))
			}
		}
	}
	return httpReq, nil
}

func buildURL(raw string, query map[string]string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", badInput("transport: request url is required", nil, map[string]any{"adapter": KindREST})
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", badInput("transport: invalid request url", err, map[string]any{"adapter": KindREST, "url": raw})
	}
	if len(query) == 0 {
		return parsed.String(), nil
	}
	values := parsed.Query()
	for key, value := range query {
		if key = strings.TrimSpace(key); key != "" {
			values.Set(key, strings.TrimSpace(value))
		}
	}
	parsed.RawQuery = values.Encode()
	return parsed.String(), nil
}

// readBody reads at most limit bytes and fails when the body is longer.
func readBody(res *http.Response, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, upstream("transport: read response body", err,
			map[string]any{"adapter": KindREST, "status_code": res.StatusCode})
	}
	if int64(len(body)) > limit {
		return nil, upstream(fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit), nil,
			map[string]any{"adapter": KindREST, "status_code": res.StatusCode, "response_limit_b": limit})
	}
	return body, nil
}

func bodyLimit(requestLimit int64, adapterLimit int64) int64 {
	switch {
	case requestLimit > 0:
		return requestLimit
	case adapterLimit > 0:
		return adapterLimit
	default:
		return defaultRESTResponseBodyLimit
	}
}

func flattenHeaders(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		flat[http.CanonicalHeaderKey(key)] = strings.Join(values, ",")
	}
	return flat
}

var _ core.TransportAdapter = (*RESTAdapter)(nil)
