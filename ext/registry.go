package ext

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/wp-media/background-processing/host"
)

// Entry types pair a filter with the name captured at registration time,
// so failures can be attributed in logs.
type queryArgsEntry struct {
	name   string
	filter QueryArgsFilter
}

type queryURLEntry struct {
	name   string
	filter QueryURLFilter
}

type postArgsEntry struct {
	name   string
	filter PostArgsFilter
}

// Registry holds dispatch filters keyed by (identifier, point) and applies
// them in registration order. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	logger *slog.Logger

	queryArgs map[string][]queryArgsEntry
	queryURL  map[string][]queryURLEntry
	postArgs  map[string][]postArgsEntry
}

// NewRegistry creates an empty filter registry with the given logger.
// A nil logger falls back to slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:    logger,
		queryArgs: make(map[string][]queryArgsEntry),
		queryURL:  make(map[string][]queryURLEntry),
		postArgs:  make(map[string][]postArgsEntry),
	}
}

// OnQueryArgs registers a query-args filter for the identifier.
func (r *Registry) OnQueryArgs(identifier, name string, f QueryArgsFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queryArgs[identifier] = append(r.queryArgs[identifier], queryArgsEntry{name, f})
}

// OnQueryURL registers a target-URL filter for the identifier.
func (r *Registry) OnQueryURL(identifier, name string, f QueryURLFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queryURL[identifier] = append(r.queryURL[identifier], queryURLEntry{name, f})
}

// OnPostArgs registers a post-args filter for the identifier.
func (r *Registry) OnPostArgs(identifier, name string, f PostArgsFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postArgs[identifier] = append(r.postArgs[identifier], postArgsEntry{name, f})
}

// ApplyQueryArgs runs the query-args chain for the identifier.
func (r *Registry) ApplyQueryArgs(ctx context.Context, identifier string, args url.Values) url.Values {
	r.mu.RLock()
	chain := r.queryArgs[identifier]
	r.mu.RUnlock()

	for _, e := range chain {
		out, err := e.filter(ctx, identifier, args)
		if err != nil {
			r.logFilterError(PointQueryArgs, identifier, e.name, err)
			continue
		}
		args = out
	}
	return args
}

// ApplyQueryURL runs the target-URL chain for the identifier.
func (r *Registry) ApplyQueryURL(ctx context.Context, identifier string, target string) string {
	r.mu.RLock()
	chain := r.queryURL[identifier]
	r.mu.RUnlock()

	for _, e := range chain {
		out, err := e.filter(ctx, identifier, target)
		if err != nil {
			r.logFilterError(PointQueryURL, identifier, e.name, err)
			continue
		}
		target = out
	}
	return target
}

// ApplyPostArgs runs the post-args chain for the identifier.
func (r *Registry) ApplyPostArgs(ctx context.Context, identifier string, args host.PostArgs) host.PostArgs {
	r.mu.RLock()
	chain := r.postArgs[identifier]
	r.mu.RUnlock()

	for _, e := range chain {
		out, err := e.filter(ctx, identifier, args)
		if err != nil {
			r.logFilterError(PointPostArgs, identifier, e.name, err)
			continue
		}
		args = out
	}
	return args
}

// logFilterError logs a warning when a filter returns an error. Filter
// errors are never propagated — the unfiltered value is kept and the
// dispatch proceeds.
func (r *Registry) logFilterError(p Point, identifier, name string, err error) {
	r.logger.Warn("dispatch filter error",
		slog.String("point", Key(identifier, p)),
		slog.String("filter", name),
		slog.String("error", err.Error()),
	)
}
