// Package async triggers out-of-band, fire-and-forget work on a server by
// having the server issue a short-lived-token-authenticated HTTP request to
// itself. The user-facing request returns immediately; the real work runs
// inside a second, independently scheduled request.
//
// This is a library, not a service. Construct one Dispatcher per job type,
// hand it a host.Host implementation, and call Dispatch from the hot path:
//
//	d, err := async.New(emailJob, h)
//	...
//	_, _ = d.Dispatch(ctx, EmailPayload{To: "a@b.com"})
//
// # Architecture
//
// The dispatcher never touches a concrete platform type. Everything it
// needs from its hosting environment — endpoint registration, token
// issue/verify, the outbound POST, tenant identity, response primitives —
// is the narrow host.Host interface. host/memory provides an in-process
// implementation for tests; host/httphost a production-shaped one on chi.
//
// Two transports exist. ModeStructuredRoute registers a POST route under
// RouteNamespace and authenticates with the platform auth token.
// ModeLegacyCallback registers privileged and non-privileged action hooks
// against the host's generic callback endpoint and authenticates with a
// per-identifier nonce. The mode a dispatcher sends with is the mode it
// serves with; the two sides of the self-call always agree.
package async
