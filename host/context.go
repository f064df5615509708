package host

import (
	"context"
	"net/http"
)

type cookieKey struct{}

// WithCookies returns a context carrying the calling request's cookies.
// Dispatch forwards them on the self-call so it runs in the same session.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookieKey{}, cookies)
}

// CookiesFromContext returns the cookies stored by WithCookies, or nil.
func CookiesFromContext(ctx context.Context) []*http.Cookie {
	c, _ := ctx.Value(cookieKey{}).([]*http.Cookie)
	return c
}
