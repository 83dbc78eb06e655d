// Package poll implements subscriptions: recurring, cancellable polling of one
// endpoint with the latest snapshot exposed as a value.
//
// # Lifecycle
//
// A Poller is created with New, started with Start and torn down with Stop.
// The first fetch happens after a short initial delay so that the
// subscriptions of a freshly mounted page do not all fire at once. After
// that the timer ticks at a fixed interval measured from when each tick
// fired, not from when its response arrived.
//
// # Gating
//
// Every tick checks, in order: the poller's own enabled predicate, the Live
// Flag, the Navigation Window and terminal visibility. A closed gate skips the
// tick without moving the schedule. A tick that fires while the previous
// request is still outstanding is also skipped, so a subscription never has
// more than one request in flight.
//
// When the Gate implements OnResume (live.Signals does), the poller re-arms
// with the initial delay as soon as the gate re-opens rather than waiting out
// the remainder of the interval.
//
// # Results
//
// Each request carries a sequence number and the URL generation it was issued
// for. A response is applied only when it belongs to the current URL and is
// newer than the data already held; a failure keeps the previous data and
// records the error. After Stop returns no further state is published.
//
//	tick ──> gates open? ──no──> OnSkip(reason), metrics skipped
//	           │ yes
//	           v
//	        in flight? ──yes──> skip "busy"
//	           │ no
//	           v
//	        Fetch(ctx, url) ──> finish: stale gen/seq? drop
//	                              │
//	                              v
//	                         State updated ──> OnChange(State)
//
// # Manual refresh
//
// Refresh fires a tick now. It ignores the Live Flag, navigation and
// visibility gates but not the poller's own enabled state or the in-flight
// limit, and it does not move the schedule.
//
// # Metrics
//
// When Config.Metrics is set each issued request, skipped tick and settled
// response is recorded, the latter with its latency and an ok/error result.
package poll
