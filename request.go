package async

import (
	"net/url"

	"github.com/wp-media/background-processing/host"
)

// RequestArgs is the derived triple a dispatch sends with: query
// parameters, target URL, and transport options. Each element is computed
// from the identifier and transport mode, unless the job supplies a fixed
// override, and each computed element passes through its extension point
// before use. An override is used verbatim: neither the default
// computation nor the filter chain runs for it.
type RequestArgs struct {
	QueryArgs url.Values
	TargetURL string
	PostArgs  host.PostArgs
}

// Optional interfaces a job value may implement in addition to job.Job.

// PrefixProvider pins the identifier prefix for this job type.
type PrefixProvider interface {
	Prefix() string
}

// ModeProvider pins the transport mode for this job type.
type ModeProvider interface {
	TransportMode() TransportMode
}

// QueryArgsProvider replaces the computed query args verbatim.
type QueryArgsProvider interface {
	QueryArgs() url.Values
}

// TargetURLProvider replaces the computed target URL verbatim.
type TargetURLProvider interface {
	TargetURL() string
}

// PostArgsProvider replaces the computed post args verbatim.
type PostArgsProvider interface {
	PostArgs() host.PostArgs
}
