// Package background runs fire-and-forget jobs that must outlive the request
// that scheduled them. Jobs run at most once on a context detached from the
// caller's cancellation, with their own timeout. Panics are recovered and
// logged, and the number of jobs in flight is bounded.
package background
