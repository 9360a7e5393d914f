// Package client talks to the curriculum backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     section, lesson and media endpoints the authoring engine consumes.
//  2. A REST/JSON implementation (see RESTClient) built on resty. It sends a
//     bearer token from a TokenProvider, refreshes it once and retries when
//     the backend reports "token expired", and maps transport failures and
//     non-2xx answers onto the sentinel errors of package common.
//
// # Error Handling
//
// Every failed call matches common.ErrNetwork. Specific answers also match
// common.ErrUnauthorized (401/403), common.ErrNotFound (404),
// common.ErrOrderConflict (409), common.ErrValidation (400) or
// common.ErrInternal (5xx). Failures that never reached the backend match
// ErrUnavailable.
//
// # Concurrency
//
// RESTClient is safe for concurrent use. Concurrent requests that all see an
// expired token trigger a single refresh.
package client
