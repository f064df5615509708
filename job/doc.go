// Package job defines the contract a concrete job plugs into a dispatcher:
// a stable name plus the payload logic that runs on the receiving side of
// the self-call.
//
// Jobs are usually declared with the typed Definition:
//
//	var emailJob = job.NewDefinition("email_notify",
//	    func(ctx context.Context, p EmailPayload) error {
//	        return send(ctx, p.To)
//	    })
//
// A Definition decodes the wire payload into its type parameter before
// calling the handler. Jobs with no payload shape, or that want the raw
// body, implement Job directly or use Func.
package job
