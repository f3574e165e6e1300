// Package redis backs the session store with Redis. TTLs map directly
// onto key expiry, so GC is a no-op; Redis reaps expired payloads
// natively.
package redis
