package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-verify/core"
)

// UnsupportedAdapter stands in for a transport kind the host has not wired.
// Every call fails with 501.
type UnsupportedAdapter struct {
	kind   string
	reason string
}

func NewUnsupportedAdapter(kind string, reason string) *UnsupportedAdapter {
	return &UnsupportedAdapter{kind: normalizeKind(kind), reason: strings.TrimSpace(reason)}
}

func (a *UnsupportedAdapter) Kind() string {
	if a == nil {
		return ""
	}
	return a.kind
}

func (a *UnsupportedAdapter) Do(context.Context, core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, internal(http.StatusInternalServerError, "transport: adapter is nil", nil)
	}
	message := "transport: " + a.kind + " adapter is not configured"
	if a.reason != "" {
		message += ": " + a.reason
	}
	return core.TransportResponse{}, internal(http.StatusNotImplemented, message, map[string]any{"adapter": a.kind})
}

var _ core.TransportAdapter = (*UnsupportedAdapter)(nil)
