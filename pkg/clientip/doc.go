// Package clientip extracts the client IP address from HTTP requests.
//
// Deployments that terminate their own reverse proxy can trust the
// forwarded headers; the headers are checked in a fixed priority order:
//
//  1. X-Forwarded-For (leftmost entry, which is the original client)
//  2. Client-IP
//  3. X-Real-IP
//  4. RemoteAddr (direct connection)
//
// Every candidate is validated with net.ParseIP before being returned;
// malformed headers are skipped silently. If no candidate parses,
// GetIP returns "0.0.0.0".
//
// Deployments that do NOT control the proxy in front of them must not
// bind sessions to the extracted IP: any client can set these headers.
package clientip
