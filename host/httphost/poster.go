package httphost

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wp-media/background-processing/host"
)

// Post issues the self-call. Non-blocking sends are spawned, not awaited:
// the goroutine carries its own timeout budget and a context detached
// from the caller's, so Dispatch returns immediately and the send
// survives the calling request ending. Blocking sends (only reachable via
// post-args overrides) run synchronously under args.Timeout.
func (h *Host) Post(ctx context.Context, target string, args host.PostArgs) (*host.Response, error) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("httphost: bad target %q", target)
	}

	if args.Blocking {
		timeout := args.Timeout
		if timeout <= 0 {
			timeout = h.sendTimeout
		}
		return h.send(ctx, target, args, timeout)
	}

	h.wg.Add(1)
	go func(ctx context.Context) {
		defer h.wg.Done()
		if _, err := h.send(ctx, target, args, h.sendTimeout); err != nil {
			// The only place a lost send surfaces.
			h.logger.Warn("self-call send failed",
				slog.String("url", target),
				slog.String("error", err.Error()),
			)
		}
	}(context.WithoutCancel(ctx))

	return &host.Response{}, nil
}

// send performs one HTTP POST under the given budget.
func (h *Host) send(ctx context.Context, target string, args host.PostArgs, timeout time.Duration) (*host.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(args.Body))
	if err != nil {
		return nil, err
	}
	if args.ContentType != "" {
		req.Header.Set("Content-Type", args.ContentType)
	}
	for _, c := range args.Cookies {
		req.AddCookie(c)
	}

	client := h.client
	if !args.SSLVerify {
		client = h.insecure
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return &host.Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Wait blocks until every in-flight fire-and-forget send has finished.
func (h *Host) Wait() {
	h.wg.Wait()
}

// serve runs srv until ctx cancels, then shuts down gracefully and drains
// outstanding sends.
func (h *Host) serve(ctx context.Context, srv *http.Server) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		h.Wait()
		return nil
	})

	return g.Wait()
}

// insecureTransport clones the default transport with TLS verification
// off, for self-calls to an internal address the certificate does not
// cover.
func insecureTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if t.TLSClientConfig == nil {
		t.TLSClientConfig = &tls.Config{}
	}
	t.TLSClientConfig.InsecureSkipVerify = true
	return t
}

// readBody drains the request body with a sane cap. Payloads are
// caller-supplied structured values, not uploads.
func readBody(req *http.Request) ([]byte, error) {
	defer req.Body.Close()
	return io.ReadAll(io.LimitReader(req.Body, 8<<20))
}
