// Package memory provides a fully in-process host.Host. Registrations go
// into maps, tokens into an in-memory single-use store, and Post can
// deliver the self-call straight back to the registered handler. Intended
// for unit testing and single-binary embedders.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

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

// Send records one outbound Post.
type Send struct {
	URL  string
	Args host.PostArgs
}

// Delivery records one in-process handler invocation made by Post.
type Delivery struct {
	URL      string
	Recorder *ResponseRecorder
	Err      error
}

// CallbackRegistration records one RegisterCallback call.
type CallbackRegistration struct {
	Name       string
	Privileged bool
}

// Host is an in-memory implementation of host.Host.
// Safe for concurrent access.
type Host struct {
	mu sync.Mutex

	baseURL     string
	tenantID    string
	issuer      *nonce.Issuer
	logger      *slog.Logger
	deliver     bool
	capDefault  bool
	capOverride map[string]bool

	callbacks  map[callbackKey]host.HandlerFunc
	routes     map[routeKey]host.Route
	sends      []Send
	deliveries []*Delivery
}

// Option configures the Host.
type Option func(*Host)

// WithBaseURL sets the base URL used to compose endpoint URLs.
func WithBaseURL(u string) Option {
	return func(h *Host) { h.baseURL = strings.TrimSuffix(u, "/") }
}

// WithTenantID sets the tenant id.
func WithTenantID(id string) Option {
	return func(h *Host) { h.tenantID = id }
}

// WithDelivery controls whether Post delivers the self-call to the
// registered handler in-process. On by default; turn it off to assert on
// sends alone.
func WithDelivery(deliver bool) Option {
	return func(h *Host) { h.deliver = deliver }
}

// WithCapability fixes the outcome of HasCapability for one capability.
func WithCapability(capability string, allowed bool) Option {
	return func(h *Host) { h.capOverride[capability] = allowed }
}

// WithCapabilityDefault sets the outcome for capabilities with no
// override. True by default.
func WithCapabilityDefault(allowed bool) Option {
	return func(h *Host) { h.capDefault = allowed }
}

// WithIssuer replaces the default memory-backed token issuer.
func WithIssuer(i *nonce.Issuer) Option {
	return func(h *Host) { h.issuer = i }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// New returns a Host with in-process delivery enabled.
func New(opts ...Option) *Host {
	h := &Host{
		baseURL:     "http://example.test",
		tenantID:    "1",
		issuer:      nonce.NewIssuer(nonce.NewMemoryStore()),
		logger:      slog.Default(),
		deliver:     true,
		capDefault:  true,
		capOverride: make(map[string]bool),
		callbacks:   make(map[callbackKey]host.HandlerFunc),
		routes:      make(map[routeKey]host.Route),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ── Registrar ──

// RegisterCallback binds a handler under the action name. Re-registering
// the same (name, privileged) pair replaces the binding.
func (h *Host) RegisterCallback(name string, privileged bool, fn host.HandlerFunc) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks[callbackKey{name, privileged}] = fn
	return nil
}

// RegisterRoute adds the route. Idempotent per (namespace, path, method).
func (h *Host) RegisterRoute(r host.Route) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes[routeKey{r.Namespace, r.Path, r.Method}] = r
	return nil
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

func (h *Host) HasCapability(_ context.Context, capability string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if allowed, ok := h.capOverride[capability]; ok {
		return allowed
	}
	return h.capDefault
}

// ── Endpoints ──

func (h *Host) CallbackURL() string {
	return h.baseURL + CallbackPath
}

func (h *Host) RouteURL(namespace, path string) string {
	return h.baseURL + "/" + namespace + "/" + path
}

// ── Poster ──

// Post records the send and, when delivery is on, invokes the registered
// handler synchronously. The returned Response is empty for non-blocking
// sends regardless of what the handler did — matching the contract that
// the send result says nothing about the job outcome.
func (h *Host) Post(ctx context.Context, target string, args host.PostArgs) (*host.Response, error) {
	h.mu.Lock()
	h.sends = append(h.sends, Send{URL: target, Args: args})
	deliver := h.deliver
	h.mu.Unlock()

	if !deliver {
		return &host.Response{}, nil
	}

	del := h.dispatch(ctx, target, args)

	h.mu.Lock()
	h.deliveries = append(h.deliveries, del)
	h.mu.Unlock()

	if args.Blocking {
		return &host.Response{StatusCode: del.Recorder.Status, Body: del.Recorder.RawBody}, del.Err
	}
	return &host.Response{}, nil
}

// dispatch resolves the target URL to a registered handler and
// invokes it, mimicking the platform's own routing.
func (h *Host) dispatch(ctx context.Context, target string, args host.PostArgs) *Delivery {
	del := &Delivery{URL: target, Recorder: &ResponseRecorder{}}

	u, err := url.Parse(target)
	if err != nil {
		del.Err = fmt.Errorf("memory: parse target: %w", err)
		return del
	}

	req := &host.Request{
		Query:   u.Query(),
		Body:    args.Body,
		Cookies: args.Cookies,
	}

	fn, authorize, err := h.resolve(u)
	if err != nil {
		del.Err = err
		return del
	}
	if authorize != nil && !authorize(ctx) {
		del.Recorder.Terminate()
		del.Err = fmt.Errorf("memory: capability check failed for %s", u.Path)
		return del
	}

	del.Err = fn(ctx, req, del.Recorder)
	return del
}

// resolve finds the handler for a parsed target URL: the legacy callback
// endpoint dispatches on the action query parameter (privileged binding
// preferred), everything else is matched against the route table.
func (h *Host) resolve(u *url.URL) (host.HandlerFunc, func(context.Context) bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if u.Path == CallbackPath {
		action := u.Query().Get("action")
		if fn, ok := h.callbacks[callbackKey{action, true}]; ok {
			return fn, nil, nil
		}
		if fn, ok := h.callbacks[callbackKey{action, false}]; ok {
			return fn, nil, nil
		}
		return nil, nil, fmt.Errorf("memory: no callback registered for action %q", action)
	}

	for key, r := range h.routes {
		if u.Path == "/"+key.namespace+"/"+key.path {
			return r.Handler, r.Authorize, nil
		}
	}
	return nil, nil, fmt.Errorf("memory: no route matches %s", u.Path)
}

// ── Introspection for tests ──

// Sends returns every recorded Post in order.
func (h *Host) Sends() []Send {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Send, len(h.sends))
	copy(out, h.sends)
	return out
}

// LastSend returns the most recent Post, or nil.
func (h *Host) LastSend() *Send {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sends) == 0 {
		return nil
	}
	s := h.sends[len(h.sends)-1]
	return &s
}

// Deliveries returns every in-process handler invocation in order.
func (h *Host) Deliveries() []*Delivery {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Delivery, len(h.deliveries))
	copy(out, h.deliveries)
	return out
}

// Callbacks returns every live callback registration.
func (h *Host) Callbacks() []CallbackRegistration {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]CallbackRegistration, 0, len(h.callbacks))
	for key := range h.callbacks {
		out = append(out, CallbackRegistration{Name: key.name, Privileged: key.privileged})
	}
	return out
}

// Routes returns every live route registration.
func (h *Host) Routes() []host.Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]host.Route, 0, len(h.routes))
	for _, r := range h.routes {
		out = append(out, r)
	}
	return out
}
