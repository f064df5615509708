package async

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wp-media/background-processing/codec"
	"github.com/wp-media/background-processing/ext"
	"github.com/wp-media/background-processing/host"
	"github.com/wp-media/background-processing/job"
	"github.com/wp-media/background-processing/middleware"
)

// Ack is the structured-route success acknowledgment.
type Ack struct {
	Success bool `json:"success"`
}

// Dispatcher fires one authenticated HTTP request at its own server per
// Dispatch call and handles that request when it arrives. Construct one
// per job type with New; construction registers the inbound endpoint with
// the host according to the transport mode.
type Dispatcher struct {
	job  job.Job
	host host.Host

	id     Identifier
	mode   TransportMode
	config Config
	logger *slog.Logger
	ext    *ext.Registry
	codec  codec.Codec

	mw      middleware.Middleware
	mwInfo  middleware.Info
	limiter *rate.Limiter
}

// New creates a dispatcher for the given job and registers its endpoint
// with the host. The identifier is prefix_jobName_tenantID and never
// changes afterwards.
func New(j job.Job, h host.Host, opts ...Option) (*Dispatcher, error) {
	if j == nil {
		return nil, ErrNoJob
	}
	if h == nil {
		return nil, ErrNoHost
	}

	d := &Dispatcher{
		job:    j,
		host:   h,
		config: DefaultConfig(),
		logger: slog.Default(),
		codec:  &codec.JSON{},
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	// Job-declared constants win over options: a job that pins its
	// prefix, mode, or codec behaves the same under every construction.
	if p, ok := j.(PrefixProvider); ok {
		d.config.Prefix = p.Prefix()
	}
	if m, ok := j.(ModeProvider); ok {
		d.mode = m.TransportMode()
	}
	if c, ok := j.(codec.Carrier); ok {
		d.codec = c.Codec()
	}
	if d.ext == nil {
		d.ext = ext.NewRegistry(d.logger)
	}

	d.id = NewIdentifier(d.config.Prefix, j.Name(), h.TenantID())
	d.mwInfo = middleware.Info{
		Identifier: d.id.String(),
		Job:        j.Name(),
		Mode:       d.mode.String(),
	}

	if err := d.register(); err != nil {
		return nil, fmt.Errorf("async: register %s: %w", d.id, err)
	}
	return d, nil
}

// Identifier returns the dispatcher's registered identifier.
func (d *Dispatcher) Identifier() Identifier { return d.id }

// Mode returns the dispatcher's transport mode.
func (d *Dispatcher) Mode() TransportMode { return d.mode }

// register announces reachability to the host. Legacy mode binds the
// privileged and non-privileged callback hooks; structured mode adds one
// POST route gated by the capability check.
func (d *Dispatcher) register() error {
	if d.mode == ModeStructuredRoute {
		return d.host.RegisterRoute(host.Route{
			Namespace: d.config.RouteNamespace,
			Path:      d.id.String(),
			Method:    http.MethodPost,
			Handler:   d.Serve,
			Authorize: func(ctx context.Context) bool {
				return d.host.HasCapability(ctx, d.config.Capability)
			},
		})
	}

	if err := d.host.RegisterCallback(d.id.String(), true, d.Serve); err != nil {
		return err
	}
	return d.host.RegisterCallback(d.id.String(), false, d.Serve)
}

// Dispatch builds the self-call for payload and fires it without waiting.
// The returned Response describes the send only — never the job outcome —
// and is typically empty. A non-nil error means the POST could not even
// be issued; nothing retries it.
func (d *Dispatcher) Dispatch(ctx context.Context, payload any) (*host.Response, error) {
	if d.limiter != nil && !d.limiter.Allow() {
		return nil, ErrRateLimited
	}

	args, err := d.requestArgs(ctx, payload)
	if err != nil {
		return nil, err
	}

	target := args.TargetURL
	if enc := args.QueryArgs.Encode(); enc != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + enc
	}

	resp, err := d.host.Post(ctx, target, args.PostArgs)
	if err != nil {
		return nil, fmt.Errorf("async: dispatch %s: %w", d.id, err)
	}
	return resp, nil
}

// requestArgs computes the dispatch triple. Each element honors a
// job-supplied override verbatim; otherwise the mode-specific default is
// computed and passed through its extension point.
func (d *Dispatcher) requestArgs(ctx context.Context, payload any) (RequestArgs, error) {
	var args RequestArgs

	if p, ok := d.job.(QueryArgsProvider); ok {
		args.QueryArgs = p.QueryArgs()
	} else {
		q := url.Values{}
		switch d.mode {
		case ModeStructuredRoute:
			token, err := d.host.Issue(ctx, d.config.AuthAction)
			if err != nil {
				return args, fmt.Errorf("async: issue token for %s: %w", d.id, err)
			}
			q.Set(d.config.AuthTokenParam, token)
		default:
			token, err := d.host.Issue(ctx, d.id.String())
			if err != nil {
				return args, fmt.Errorf("async: issue nonce for %s: %w", d.id, err)
			}
			q.Set("action", d.id.String())
			q.Set("nonce", token)
		}
		args.QueryArgs = d.ext.ApplyQueryArgs(ctx, d.id.String(), q)
	}

	if p, ok := d.job.(TargetURLProvider); ok {
		args.TargetURL = p.TargetURL()
	} else {
		var target string
		if d.mode == ModeStructuredRoute {
			target = d.host.RouteURL(d.config.RouteNamespace, d.id.String())
		} else {
			target = d.host.CallbackURL()
		}
		args.TargetURL = d.ext.ApplyQueryURL(ctx, d.id.String(), target)
	}

	if p, ok := d.job.(PostArgsProvider); ok {
		args.PostArgs = p.PostArgs()
	} else {
		body, err := d.codec.Encode(payload)
		if err != nil {
			return args, fmt.Errorf("async: encode payload for %s: %w", d.id, err)
		}
		pa := host.PostArgs{
			Timeout:     d.config.DispatchTimeout,
			Body:        body,
			ContentType: d.codec.ContentType(),
			Cookies:     host.CookiesFromContext(ctx),
			SSLVerify:   d.config.SSLVerify,
		}
		// Blocking stays false: fire-and-forget is the whole point. The
		// structured route transport has no blocking flag at all, so the
		// field is meaningful only to legacy-transport posters.
		args.PostArgs = d.ext.ApplyPostArgs(ctx, d.id.String(), pa)
	}

	return args, nil
}

// Serve handles the inbound self-call: release the session lock, verify
// the token, run the job, answer per transport.
func (d *Dispatcher) Serve(ctx context.Context, req *host.Request, w host.ResponseWriter) error {
	// Token verification and the job itself may both be slow; free the
	// session first so concurrent requests sharing it are not blocked.
	if req.Session != nil {
		req.Session.ReleaseLock()
	}

	if err := d.verify(ctx, req); err != nil {
		d.logger.Warn("rejecting self-call",
			slog.String("identifier", d.id.String()),
			slog.String("error", err.Error()),
		)
		// Fail closed. The wire sees the host's standard denial and
		// nothing that would distinguish a missing token from a stale
		// one.
		w.Terminate()
		return err
	}

	// The legacy transport is complete only once the request hard-ends,
	// whether or not the job succeeded.
	if d.mode == ModeLegacyCallback {
		defer w.Terminate()
	}

	if err := d.execute(ctx, req.Body); err != nil {
		// Job failures pass through untouched; the host's default error
		// path takes it from here. The self-issued caller is not
		// listening, so the job must have recorded its own failure.
		return err
	}

	if d.mode == ModeStructuredRoute {
		return w.WriteJSON(http.StatusOK, Ack{Success: true})
	}
	return nil
}

// verify checks the transport-appropriate token. Structured mode verifies
// the platform auth token; legacy mode verifies the per-identifier nonce.
func (d *Dispatcher) verify(ctx context.Context, req *host.Request) error {
	var token, action string
	if d.mode == ModeStructuredRoute {
		token = req.Query.Get(d.config.AuthTokenParam)
		action = d.config.AuthAction
	} else {
		token = req.Query.Get("nonce")
		action = d.id.String()
	}

	if token == "" {
		return ErrTokenMissing
	}
	if err := d.host.Verify(ctx, token, action); err != nil {
		d.logger.Debug("token verification failed",
			slog.String("identifier", d.id.String()),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return ErrTokenInvalid
	}
	return nil
}

// execute runs the job through the middleware chain, if any.
func (d *Dispatcher) execute(ctx context.Context, payload []byte) error {
	run := func(ctx context.Context) error {
		return d.job.Execute(ctx, payload)
	}
	if d.mw != nil {
		return d.mw(ctx, d.mwInfo, run)
	}
	return run(ctx)
}
