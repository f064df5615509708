package async

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/wp-media/background-processing/codec"
	"github.com/wp-media/background-processing/ext"
	"github.com/wp-media/background-processing/middleware"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithLogger sets the structured logger for the dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = l
		return nil
	}
}

// WithTransportMode fixes the transport mode. A job that implements
// ModeProvider wins over this option.
func WithTransportMode(m TransportMode) Option {
	return func(d *Dispatcher) error {
		d.mode = m
		return nil
	}
}

// WithPrefix sets the identifier prefix.
func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) error {
		d.config.Prefix = prefix
		return nil
	}
}

// WithCapability sets the capability gating the structured route.
func WithCapability(capability string) Option {
	return func(d *Dispatcher) error {
		d.config.Capability = capability
		return nil
	}
}

// WithSSLVerify enables TLS verification on the self-call.
func WithSSLVerify(verify bool) Option {
	return func(d *Dispatcher) error {
		d.config.SSLVerify = verify
		return nil
	}
}

// WithDispatchTimeout sets the client-side budget for the self-call.
func WithDispatchTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) error {
		d.config.DispatchTimeout = timeout
		return nil
	}
}

// WithCodec sets the payload codec. A job that implements codec.Carrier
// wins over this option, keeping the wire format aligned with the job's
// own decoding.
func WithCodec(c codec.Codec) Option {
	return func(d *Dispatcher) error {
		d.codec = c
		return nil
	}
}

// WithExtensions sets the filter registry the dispatcher resolves its
// extension points against. Dispatchers sharing a registry share its
// filters.
func WithExtensions(r *ext.Registry) Option {
	return func(d *Dispatcher) error {
		d.ext = r
		return nil
	}
}

// WithMiddleware wraps the job-execution step of Serve with the given
// middleware, outermost first.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(d *Dispatcher) error {
		d.mw = middleware.Chain(mws...)
		return nil
	}
}

// WithRateLimit caps how fast this dispatcher fires self-calls. Dispatch
// never blocks waiting for a slot: over the limit it fails immediately
// with ErrRateLimited.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(d *Dispatcher) error {
		d.limiter = rate.NewLimiter(limit, burst)
		return nil
	}
}
