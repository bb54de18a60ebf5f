package cache

import "errors"

// ErrCacheMiss is returned by [GetJSON] when key has no entry.
var ErrCacheMiss = errors.New("cache miss")
