// Package health exposes liveness and readiness checks for the session
// middleware, including a checker that reports on the keystore's key
// material so operators can tell a partially loaded keystore apart from
// a fully loaded one.
package health
