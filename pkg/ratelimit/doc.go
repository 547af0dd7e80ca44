// Package ratelimit provides the fixed-interval pacing applied around each
// photo's archive unit. The remote service is called strictly sequentially,
// so pacing is a pair of unconditional delays rather than a token bucket;
// the Sleeper indirection keeps the delays testable.
package ratelimit
