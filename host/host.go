// Package host defines the narrow surface the dispatcher consumes from its
// hosting platform: endpoint registration, token issue/verify, an HTTP
// poster with fire-and-forget semantics, tenant identity, and response
// primitives.
//
// The dispatcher holds a Host interface, never a concrete platform type.
// host/memory implements it in-process for tests and embedders;
// host/httphost implements it on a real HTTP server.
package host

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// HandlerFunc handles an inbound self-call delivered by the host.
type HandlerFunc func(ctx context.Context, req *Request, w ResponseWriter) error

// Route describes a structured route registration.
type Route struct {
	// Namespace is the route-table namespace, e.g. "background_process/v1".
	Namespace string

	// Path is the route path under the namespace.
	Path string

	// Method is the HTTP method, normally POST.
	Method string

	// Handler receives requests that pass Authorize.
	Handler HandlerFunc

	// Authorize gates the route. When it returns false the host must deny
	// the request before Handler runs. A nil Authorize allows everything.
	Authorize func(ctx context.Context) bool
}

// Registrar registers inbound endpoints.
type Registrar interface {
	// RegisterCallback binds a handler to the generic callback endpoint
	// under the given action name. Privileged and non-privileged variants
	// are separate registrations. Re-registering the same
	// (name, privileged) pair replaces the previous binding, so repeated
	// construction of the same job type does not double-register.
	RegisterCallback(name string, privileged bool, h HandlerFunc) error

	// RegisterRoute adds a structured route to the host's route table.
	// Registration is idempotent per (namespace, path, method).
	RegisterRoute(r Route) error
}

// Tokens issues and verifies short-lived tokens bound to an action string.
type Tokens interface {
	Issue(ctx context.Context, action string) (string, error)

	// Verify consumes the token. A token verifies at most once, and only
	// against the action it was issued for.
	Verify(ctx context.Context, token, action string) error
}

// PostArgs carries the transport options for the outbound self-call.
type PostArgs struct {
	// Timeout is the client-side budget for the send. Near zero by
	// default: the send must not hold the calling request open. Hosts
	// that deliver fire-and-forget sends asynchronously may apply their
	// own budget instead of this one.
	Timeout time.Duration

	// Blocking false requests fire-and-forget delivery. The structured
	// route transport has no manual blocking flag and ignores this field.
	Blocking bool

	// Body is the encoded payload.
	Body []byte

	// ContentType names the body encoding.
	ContentType string

	// Cookies are the calling request's cookies, forwarded so the
	// self-call shares its session.
	Cookies []*http.Cookie

	// SSLVerify enables TLS verification on the send. Off by default;
	// the target is the server's own address, which often resolves to an
	// internal name the certificate does not cover.
	SSLVerify bool
}

// Response reports what the poster observed about the send, not the
// eventual job outcome. Fire-and-forget sends return an empty Response
// immediately.
type Response struct {
	StatusCode int
	Body       []byte
}

// Poster issues the outbound self-call.
type Poster interface {
	Post(ctx context.Context, url string, args PostArgs) (*Response, error)
}

// Identity reports tenant and capability facts.
type Identity interface {
	// TenantID identifies the current site/tenant. Part of every
	// dispatcher identifier.
	TenantID() string

	// HasCapability reports whether the inbound request context holds the
	// given capability.
	HasCapability(ctx context.Context, capability string) bool
}

// Endpoints resolves the URLs the dispatcher targets.
type Endpoints interface {
	// CallbackURL is the generic legacy callback endpoint.
	CallbackURL() string

	// RouteURL resolves a structured route to an absolute URL.
	RouteURL(namespace, path string) string
}

// Host is the full collaborator surface consumed by a dispatcher.
type Host interface {
	Registrar
	Tokens
	Poster
	Identity
	Endpoints
}

// Session is the lock handle on an inbound request's session. The handler
// releases it before slow work so it cannot stall concurrent user requests
// sharing the same session.
type Session interface {
	ReleaseLock()
}

// Request is an inbound self-call as delivered by the host.
type Request struct {
	Query   url.Values
	Body    []byte
	Cookies []*http.Cookie

	// Session is the inbound request's session lock, if the host tracks
	// one. May be nil.
	Session Session
}

// ResponseWriter answers or terminates an inbound self-call.
type ResponseWriter interface {
	// WriteJSON wraps v in the host's structured-response convention.
	WriteJSON(status int, v any) error

	// Terminate hard-ends the request with no further output. The legacy
	// callback transport is complete only once this runs.
	Terminate()
}
