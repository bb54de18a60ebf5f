// Package httputil provides HTTP utilities for the repository clients.
//
// # Retry
//
// [Retry] re-runs an operation while it fails with a [RetryableError],
// doubling the delay between attempts. Transport errors and 5xx responses
// are retryable; 404 and other client errors are not.
//
//	err := httputil.RetryPolicy(ctx, httputil.DefaultPolicy, func() error {
//	    return fetch(ctx)
//	})
//
// # Downloads
//
// [WriteFileAtomic] streams a response body into a temporary file next to
// the destination and renames it into place, so a concurrent reader never
// observes a partially written artifact.
package httputil
