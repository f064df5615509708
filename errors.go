package async

import "errors"

var (
	// Construction errors.
	ErrNoHost = errors.New("async: no host configured")
	ErrNoJob  = errors.New("async: no job supplied")

	// Dispatch errors.
	ErrRateLimited = errors.New("async: dispatch rate limit exceeded")

	// Serve errors. The denial sent over the wire carries no detail that
	// would distinguish one from the other.
	ErrTokenMissing = errors.New("async: auth token missing")
	ErrTokenInvalid = errors.New("async: auth token invalid")
)
