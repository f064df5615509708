// Package ext is the extension-point registry for outbound dispatch
// parameters. External code registers filters keyed by (identifier, point);
// before each send the dispatcher passes the computed query args, target
// URL, and post args through the matching filter chains.
//
// Filters adjust outbound parameters without modifying the dispatcher. A
// filter that returns an error is logged and skipped — the value entering
// it is kept, and the chain continues. Filters never block a dispatch.
package ext
