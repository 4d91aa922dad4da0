// Package client talks to the postbox backend over gRPC.
//
// GRPCClient keeps the access and refresh tokens of the current session in
// memory and attaches the access token to every authenticated call through
// a unary interceptor. When the server answers Unauthenticated with
// "token expired", the interceptor exchanges the refresh token for a new
// access token once and retries the call; if that fails the session is
// dropped and ErrSessionExpired is returned.
//
// gRPC status codes are mapped to the sentinel errors in errors.go so the
// CLI can match them with errors.Is.
package client
