// Package httphost implements host.Host on a real HTTP server using chi.
// Structured routes mount under /{namespace}/{path}; the generic legacy
// callback endpoint lives at CallbackPath and dispatches on the "action"
// query parameter. Tokens come from a nonce.Issuer over any nonce.Store,
// so a Redis store makes self-calls valid across replicas.
//
// Usage:
//
//	h := httphost.New("https://app.example.com", nonce.NewMemoryStore())
//	d, err := async.New(emailJob, h)
//	...
//	err = h.ListenAndServe(ctx, ":8080")
package httphost

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wp-media/background-processing/host"
	"github.com/wp-media/background-processing/nonce"
)

// Compile-time interface check.
var _ host.Host = (*Host)(nil)

// CallbackPath is the path of the generic legacy callback endpoint.
const CallbackPath = "/hooks/callback"

type callbackKey struct {
	name       string
	privileged bool
}

type routeKey struct {
	namespace string
	path      string
	method    string
}

// Host hosts dispatchers on an HTTP server.
type Host struct {
	baseURL    string
	router     *chi.Mux
	issuer     *nonce.Issuer
	tenantID   string
	capability func(ctx context.Context, capability string) bool
	logger     *slog.Logger

	client      *http.Client
	insecure    *http.Client
	sendTimeout time.Duration
	tokenTTL    time.Duration

	// wg tracks in-flight fire-and-forget sends so shutdown can drain
	// them.
	wg sync.WaitGroup

	mu        sync.Mutex
	callbacks map[callbackKey]host.HandlerFunc
	routes    map[routeKey]struct{}
}

// Option configures the Host.
type Option func(*Host)

// WithTenantID sets the tenant id. Defaults to "1".
func WithTenantID(id string) Option {
	return func(h *Host) { h.tenantID = id }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithCapabilityCheck replaces the capability predicate. The default
// allows everything; deployments with real users must supply their own.
func WithCapabilityCheck(fn func(ctx context.Context, capability string) bool) Option {
	return func(h *Host) { h.capability = fn }
}

// WithSendTimeout sets the budget applied to spawned fire-and-forget
// sends. Defaults to 30s — the caller is not waiting, so the budget only
// bounds resource use, not latency.
func WithSendTimeout(timeout time.Duration) Option {
	return func(h *Host) { h.sendTimeout = timeout }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(h *Host) { h.tokenTTL = ttl }
}

// New creates a Host serving under baseURL with tokens in store.
func New(baseURL string, store nonce.Store, opts ...Option) *Host {
	h := &Host{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		router:      chi.NewRouter(),
		tenantID:    "1",
		capability:  func(context.Context, string) bool { return true },
		logger:      slog.Default(),
		sendTimeout: 30 * time.Second,
		tokenTTL:    nonce.DefaultTTL,
		callbacks:   make(map[callbackKey]host.HandlerFunc),
		routes:      make(map[routeKey]struct{}),
	}
	h.client = &http.Client{}
	h.insecure = &http.Client{Transport: insecureTransport()}
	for _, opt := range opts {
		opt(h)
	}
	h.issuer = nonce.NewIssuer(store, nonce.WithTTL(h.tokenTTL))
	h.router.Post(CallbackPath, h.handleCallback)
	return h
}

// Handler returns the http.Handler with all mounted routes. Routes
// registered after the handler is in service still take effect; chi
// mounts are live.
func (h *Host) Handler() http.Handler { return h.router }

// ListenAndServe runs the host's HTTP server until ctx is cancelled, then
// shuts down gracefully and drains in-flight fire-and-forget sends.
func (h *Host) ListenAndServe(ctx context.Context, addr string) error {
	return h.serve(ctx, &http.Server{Addr: addr, Handler: h.router})
}

// ── Registrar ──

// RegisterCallback binds a handler to the generic callback endpoint under
// the action name. Re-registering the same pair replaces the binding.
func (h *Host) RegisterCallback(name string, privileged bool, fn host.HandlerFunc) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks[callbackKey{name, privileged}] = fn
	return nil
}

// RegisterRoute mounts the route at /{namespace}/{path}. Idempotent:
// re-registering the same (namespace, path, method) is a no-op, which is
// what repeated construction of the same job type produces.
func (h *Host) RegisterRoute(r host.Route) error {
	key := routeKey{r.Namespace, r.Path, r.Method}

	h.mu.Lock()
	if _, ok := h.routes[key]; ok {
		h.mu.Unlock()
		return nil
	}
	h.routes[key] = struct{}{}
	h.mu.Unlock()

	h.router.Method(r.Method, "/"+r.Namespace+"/"+r.Path, h.routeHandler(r))
	return nil
}

// routeHandler adapts a structured route into an http.HandlerFunc,
// enforcing the route's authorization predicate before the handler runs.
func (h *Host) routeHandler(r host.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		if r.Authorize != nil && !r.Authorize(ctx) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		h.invoke(ctx, r.Handler, w, req)
	}
}

// handleCallback dispatches the generic callback endpoint on the "action"
// query parameter. The privileged binding is preferred when both exist.
func (h *Host) handleCallback(w http.ResponseWriter, req *http.Request) {
	action := req.URL.Query().Get("action")

	h.mu.Lock()
	fn, ok := h.callbacks[callbackKey{action, true}]
	if !ok {
		fn, ok = h.callbacks[callbackKey{action, false}]
	}
	h.mu.Unlock()

	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.invoke(req.Context(), fn, w, req)
}

// invoke builds the host.Request, runs the handler, and renders the
// host's generic failure when the handler errored without responding.
func (h *Host) invoke(ctx context.Context, fn host.HandlerFunc, w http.ResponseWriter, req *http.Request) {
	body, err := readBody(req)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	hreq := &host.Request{
		Query:   req.URL.Query(),
		Body:    body,
		Cookies: req.Cookies(),
	}
	rw := &responseWriter{w: w}

	if err := fn(ctx, hreq, rw); err != nil {
		h.logger.Error("self-call handler error",
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()),
		)
		if !rw.done {
			// Generic failure, no detail. The self-issued caller is not
			// listening anyway.
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	if !rw.done {
		w.WriteHeader(http.StatusOK)
	}
}

// ── Tokens ──

func (h *Host) Issue(ctx context.Context, action string) (string, error) {
	return h.issuer.Issue(ctx, action)
}

func (h *Host) Verify(ctx context.Context, token, action string) error {
	return h.issuer.Verify(ctx, token, action)
}

// ── Identity ──

func (h *Host) TenantID() string { return h.tenantID }

func (h *Host) HasCapability(ctx context.Context, capability string) bool {
	return h.capability(ctx, capability)
}

// ── Endpoints ──

func (h *Host) CallbackURL() string {
	return h.baseURL + CallbackPath
}

func (h *Host) RouteURL(namespace, path string) string {
	return h.baseURL + "/" + namespace + "/" + path
}
