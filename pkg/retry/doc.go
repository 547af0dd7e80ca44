// Package retry provides bounded retry with pluggable backoff strategies.
//
// Remote calls use APIRetrier, which backs off linearly (5s, 10s, 15s) for
// temporary service outages and waits a flat 2 seconds for everything else.
// Generic operations can use Do/DoWithResult with a custom Config.
package retry
