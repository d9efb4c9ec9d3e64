package devkit

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"

	"github.com/goliatone/go-verify/core"
)

// TransportScript is one scripted exchange. Once the script runs out the last
// entry is replayed; an empty script answers every call with an empty 200.
type TransportScript struct {
	Response core.TransportResponse
	Err      error
}

// FakeTransportAdapter replays scripted Cognito wire responses and keeps a
// copy of every request it saw.
type FakeTransportAdapter struct {
	kind string

	mu      sync.Mutex
	scripts []TransportScript
	seen    []core.TransportRequest
}

func NewFakeTransportAdapter(kind string, scripts ...TransportScript) *FakeTransportAdapter {
	return &FakeTransportAdapter{
		kind:    strings.ToLower(strings.TrimSpace(kind)),
		scripts: append([]TransportScript(nil), scripts...),
	}
}

func (a *FakeTransportAdapter) Kind() string {
	if a == nil {
		return ""
	}
	return a.kind
}

func (a *FakeTransportAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, fmt.Errorf("devkit: fake transport adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seen = append(a.seen, copyRequest(req))
	script, ok := a.scriptFor(len(a.seen) - 1)
	if !ok {
		return core.TransportResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": cognitoContentType},
			Body:       []byte("{}"),
			Metadata:   map[string]any{"kind": a.kind},
		}, nil
	}
	return copyResponse(script.Response), script.Err
}

// scriptFor must be called with mu held.
func (a *FakeTransportAdapter) scriptFor(call int) (TransportScript, bool) {
	switch {
	case len(a.scripts) == 0:
		return TransportScript{}, false
	case call < len(a.scripts):
		return a.scripts[call], true
	default:
		return a.scripts[len(a.scripts)-1], true
	}
}

// Append queues more scripted exchanges.
func (a *FakeTransportAdapter) Append(scripts ...TransportScript) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.scripts = append(a.scripts, scripts...)
	a.mu.Unlock()
}

func (a *FakeTransportAdapter) LastRequest() (core.TransportRequest, bool) {
	requests := a.Requests()
	if len(requests) == 0 {
		return core.TransportRequest{}, false
	}
	return requests[len(requests)-1], true
}

func (a *FakeTransportAdapter) Requests() []core.TransportRequest {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.TransportRequest, len(a.seen))
	for i, req := range a.seen {
		out[i] = copyRequest(req)
	}
	return out
}

// Targets lists the X-Amz-Target header of each captured request in call order.
func (a *FakeTransportAdapter) Targets() []string {
	requests := a.Requests()
	targets := make([]string, len(requests))
	for i, req := range requests {
		targets[i] = req.Headers["X-Amz-Target"]
	}
	return targets
}

func copyRequest(in core.TransportRequest) core.TransportRequest {
	out := in
	out.Headers = cloneOrEmpty(in.Headers)
	out.Query = cloneOrEmpty(in.Query)
	out.Metadata = cloneOrEmpty(in.Metadata)
	out.Body = append([]byte(nil), in.Body...)
	return out
}

func copyResponse(in core.TransportResponse) core.TransportResponse {
	out := in
	out.Headers = cloneOrEmpty(in.Headers)
	out.Metadata = cloneOrEmpty(in.Metadata)
	out.Body = append([]byte(nil), in.Body...)
	return out
}

func cloneOrEmpty[V any](in map[string]V) map[string]V {
	if in == nil {
		return map[string]V{}
	}
	return maps.Clone(in)
}

var _ core.TransportAdapter = (*FakeTransportAdapter)(nil)
