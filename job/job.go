package job

import "context"

// Job is a unit of deferred work reachable through a self-call.
type Job interface {
	// Name identifies the job type. Together with the dispatcher's prefix
	// and the tenant id it forms the registered identifier, so it must be
	// stable across deploys.
	Name() string

	// Execute runs the job logic against the raw payload delivered in the
	// self-call body. The dispatcher performs no validation on the
	// payload and imposes no recovery on failures: an error returned here
	// propagates to the host's default error path, and since the caller
	// fired and forgot, the job itself must record anything it wants
	// observed.
	Execute(ctx context.Context, payload []byte) error
}

// Func adapts a name and a function into a Job.
type Func struct {
	JobName string
	Handler func(ctx context.Context, payload []byte) error
}

func (f Func) Name() string { return f.JobName }

func (f Func) Execute(ctx context.Context, payload []byte) error {
	return f.Handler(ctx, payload)
}
