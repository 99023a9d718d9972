// Package keystore holds the process's single RS256 keypair.
//
// A Store is loaded once at startup from PEM files and never mutated
// afterward; it is safe for concurrent reads. Loading is best-effort:
// either key may be absent, and a failure loading one key does not
// prevent the other from loading. Callers inspect the LoadReport to
// decide whether a partially populated store is acceptable.
package keystore
