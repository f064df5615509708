package async

import "time"

// RouteNamespace is the route-table namespace structured routes are
// registered under.
const RouteNamespace = "background_process/v1"

// Config holds configuration for a Dispatcher.
type Config struct {
	// Prefix is the first segment of the identifier. A job may override
	// it by implementing PrefixProvider.
	Prefix string

	// RouteNamespace is the namespace for structured-route registration.
	RouteNamespace string

	// AuthTokenParam is the query parameter carrying the platform auth
	// token in structured-route mode.
	AuthTokenParam string

	// AuthAction is the token action structured-route tokens are issued
	// and verified against.
	AuthAction string

	// Capability gates the structured route. The host's capability check
	// must pass before Serve runs.
	Capability string

	// DispatchTimeout is the client-side budget for the self-call.
	// Deliberately near zero: the send must never hold the calling
	// request open. Hosts that spawn fire-and-forget sends apply their
	// own budget instead.
	DispatchTimeout time.Duration

	// SSLVerify enables TLS verification on the self-call.
	SSLVerify bool
}

// DefaultConfig returns a Config with the standard values.
func DefaultConfig() Config {
	return Config{
		Prefix:          "wp",
		RouteNamespace:  RouteNamespace,
		AuthTokenParam:  "_wpnonce",
		AuthAction:      "platform-auth",
		Capability:      "manage_options",
		DispatchTimeout: 10 * time.Millisecond,
		SSLVerify:       false,
	}
}
