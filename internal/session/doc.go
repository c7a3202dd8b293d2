// Package session implements server-side browser sessions.
//
// A browser holds a single cookie containing an HS256-signed token whose ID claim names a
// session. The session payload ([Data]: the authenticated user id, a pending OAuth state, and
// at most one flash message) lives in a [Store]:
//   - [MemoryStore] : process-local map, used in development and tests
//   - [RedisStore] : shared Redis keys with TTL, used when several processes serve the app
//
// [Manager.Middleware] loads the session for each request and places it in the request
// context; handlers mutate it through [FromContext]. Changes are committed (store write plus
// Set-Cookie) just before the response headers are written, so a handler never needs to save
// explicitly.
package session
