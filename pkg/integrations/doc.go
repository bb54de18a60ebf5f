// Package integrations provides the shared HTTP client used to talk to
// remote artifact repositories.
//
// # Overview
//
// Repository-specific clients live in subpackages:
//
//   - [maven]: Maven repository layout downloads and the Solr search index
//
// # Shared Infrastructure
//
// [Client] wraps net/http with:
//   - Retry with exponential backoff for transport errors and 5xx responses
//   - Namespaced response caching through [cache.Scoped]
//   - Atomic file downloads
//   - Observability hooks for every request
//
// Status mapping:
//   - 200: success
//   - 404: [ErrNotFound]
//   - 5xx: retryable [ErrNetwork]
//   - other: [ErrNetwork]
package integrations
