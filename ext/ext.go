package ext

import (
	"context"
	"net/url"

	"github.com/wp-media/background-processing/host"
)

// Point names one of the three dispatch extension points.
type Point string

const (
	// PointQueryArgs filters the query parameters appended to the
	// self-call URL.
	PointQueryArgs Point = "query_args"

	// PointQueryURL filters the target URL of the self-call.
	PointQueryURL Point = "query_url"

	// PointPostArgs filters the transport options and body of the
	// self-call.
	PointPostArgs Point = "post_args"
)

// Key returns the flat string form "identifier_point". Internally filters
// are keyed by the (identifier, point) pair; the string form exists only
// for external boundaries that still address points by name.
func Key(identifier string, p Point) string {
	return identifier + "_" + string(p)
}

// QueryArgsFilter receives and returns the computed query args.
type QueryArgsFilter func(ctx context.Context, identifier string, args url.Values) (url.Values, error)

// QueryURLFilter receives and returns the computed target URL.
type QueryURLFilter func(ctx context.Context, identifier string, target string) (string, error)

// PostArgsFilter receives and returns the computed post args.
type PostArgsFilter func(ctx context.Context, identifier string, args host.PostArgs) (host.PostArgs, error)
