// Package common contains shared constants and sentinel errors used across
// postbox components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on requests that need an authenticated user.
const AccessTokenHeaderName = "access_token"

// RefreshTokenHeaderName is the gRPC metadata key used to carry the
// refresh token when a new access token is requested.
const RefreshTokenHeaderName = "refresh_token"
