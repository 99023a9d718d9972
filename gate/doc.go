// Package gate provides composable HTTP access-control middleware.
//
// Each gate extracts the session token from the authToken cookie,
// validates it, and either forwards the request with the resolved user
// attached to the context or writes a terminal JSON failure envelope.
// Authentication failures map to 401, authorization failures to 403,
// and anything unexpected during evaluation to 500. Every path is
// single-pass; there are no retries.
package gate
