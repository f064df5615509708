// Package middleware provides composable middleware for the job-execution
// step of Serve. Middleware wraps the handler call synchronously and can
// observe or annotate it (logging, tracing). The dispatcher itself imposes
// no recovery or transformation on job errors; middleware is strictly
// opt-in and must preserve the returned error.
package middleware

import "context"

// Info describes the self-call being handled.
type Info struct {
	// Identifier is the dispatcher's registered identifier.
	Identifier string

	// Job is the job type name.
	Job string

	// Mode is the transport mode string, "structured_route" or
	// "legacy_callback".
	Mode string
}

// Handler is the terminal function that executes the job logic.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, the self-call info, and the next handler to call.
// Middleware MUST call next to continue the chain (unless
// short-circuiting on error).
type Middleware func(ctx context.Context, info Info, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the list
// is the outermost wrapper.
//
// Example: Chain(logging, tracing) executes as:
//
//	logging → tracing → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, info Info, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, info, prev)
			}
		}
		return h(ctx)
	}
}
