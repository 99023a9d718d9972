// Package session wraps token verification with the business rules of
// a live session: a verified token is only a valid session while its
// expiration lies in the future. The package also owns the request-
// facing User projection of the token claims and the context helpers
// that carry it through a handler chain.
package session
