package transport

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-verify/core"
)

// AdapterFactory builds an adapter on demand from host supplied settings.
type AdapterFactory func(config map[string]any) (core.TransportAdapter, error)

// Registry resolves transport adapters by case insensitive kind. A kind may
// carry a ready adapter, a factory, or both; the adapter wins.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

type registryEntry struct {
	adapter core.TransportAdapter
	factory AdapterFactory
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]registryEntry{}}
}

// NewDefaultRegistry carries the REST adapter. Unknown kinds build an
// UnsupportedAdapter.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.Register(NewRESTAdapter(nil))
	return registry
}

func (r *Registry) Register(adapter core.TransportAdapter) error {
	if adapter == nil {
		return badInput("transport: adapter is nil", nil, nil)
	}
	return r.put(adapter.Kind(), registryEntry{adapter: adapter})
}

func (r *Registry) RegisterFactory(kind string, factory AdapterFactory) error {
	if factory == nil {
		return badInput("transport: adapter factory is nil", nil, map[string]any{"kind": kind})
	}
	return r.put(kind, registryEntry{factory: factory})
}

func (r *Registry) put(kind string, next registryEntry) error {
	if r == nil {
		return internal(http.StatusInternalServerError, "transport: registry is nil", nil)
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return badInput("transport: adapter kind is required", nil, nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = map[string]registryEntry{}
	}
	entry := r.entries[kind]
	switch {
	case next.adapter != nil && entry.adapter != nil:
		return badInput("transport: adapter kind "+kind+" already registered", nil, map[string]any{"kind": kind})
	case next.factory != nil && entry.factory != nil:
		return badInput("transport: factory for "+kind+" already registered", nil, map[string]any{"kind": kind})
	case next.adapter != nil:
		entry.adapter = next.adapter
	default:
		entry.factory = next.factory
	}
	r.entries[kind] = entry
	return nil
}

// Build returns the registered adapter for kind, then tries its factory, and
// finally falls back to an UnsupportedAdapter whose reason is config["reason"].
func (r *Registry) Build(kind string, config map[string]any) (core.TransportAdapter, error) {
	if r == nil {
		return nil, internal(http.StatusInternalServerError, "transport: registry is nil", nil)
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return nil, badInput("transport: adapter kind is required", nil, nil)
	}

	r.mu.RLock()
	entry := r.entries[kind]
	r.mu.RUnlock()

	if entry.adapter != nil {
		return entry.adapter, nil
	}
	if entry.factory == nil {
		reason, _ := config["reason"].(string)
		return NewUnsupportedAdapter(kind, reason), nil
	}
	settings := make(map[string]any, len(config))
	for key, value := range config {
		settings[key] = value
	}
	built, err := entry.factory(settings)
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, internal(http.StatusInternalServerError, "transport: factory for "+kind+" returned nil adapter", nil)
	}
	return built, nil
}

func (r *Registry) Get(kind string) (core.TransportAdapter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry := r.entries[normalizeKind(kind)]
	return entry.adapter, entry.adapter != nil
}

// List returns registered adapters sorted by kind.
func (r *Registry) List() []core.TransportAdapter {
	if r == nil {
		return []core.TransportAdapter{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.entries))
	for kind, entry := range r.entries {
		if entry.adapter != nil {
			kinds = append(kinds, kind)
		}
	}
	sort.Strings(kinds)
	adapters := make([]core.TransportAdapter, 0, len(kinds))
	for _, kind := range kinds {
		adapters = append(adapters, r.entries[kind].adapter)
	}
	return adapters
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
