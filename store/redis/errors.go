package redis

import "errors"

// ErrUnavailable wraps every Redis transport failure so callers can
// distinguish infrastructure trouble from a plain session miss.
var ErrUnavailable = errors.New("sessionstore/redis: redis unavailable")
