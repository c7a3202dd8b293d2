// Package models defines domain entities and persistence interfaces for the mediaranker service.
//
// Persistent entities:
//   - [User] : accounts created from an OAuth provider assertion, unique on (provider, uid)
//   - [Work] : catalog entries classified by [Category] (album, book, movie)
//   - [Vote] : a single upvote linking a user to a work, unique on (user, work)
//
// All entities implement [Model], providing an ID, timestamps, and validation.
// Validation failures are reported as [*ValidationError], which unwraps to [shared.ErrInvalidInput]
// so callers can branch with [errors.Is] without inspecting messages.
package models
