// Package identity is the stateless client for the external identity
// service: authenticate(credentials) and verify(token), one round trip
// each. It performs no caching, retries, or backoff; resilience decisions
// belong to the callers (the request gate and the session manager).
package identity
