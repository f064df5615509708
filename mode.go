package async

// TransportMode selects how a dispatcher reaches itself over HTTP.
// It is fixed at construction and resolves identically on the sending and
// receiving side of the same dispatcher instance.
type TransportMode int

const (
	// ModeLegacyCallback targets the host's generic callback endpoint,
	// selected by an "action" query parameter equal to the identifier and
	// authenticated by a per-identifier nonce. The receiving side
	// hard-terminates the request to signal completion.
	ModeLegacyCallback TransportMode = iota

	// ModeStructuredRoute targets a dedicated POST route registered under
	// RouteNamespace, authenticated by the platform auth token and gated
	// by a capability check. The receiving side answers with a structured
	// JSON acknowledgment.
	ModeStructuredRoute
)

func (m TransportMode) String() string {
	if m == ModeStructuredRoute {
		return "structured_route"
	}
	return "legacy_callback"
}
