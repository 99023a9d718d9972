// Package envelope provides the uniform success/failure response shape
// returned by session validation and written by the access gates.
//
// An Envelope holds exactly one of two states: a success payload (Data,
// optionally TotalCount) or a failure (ErrorCode, Message). The state is
// enforced by the constructor helpers, not by the type itself.
package envelope
