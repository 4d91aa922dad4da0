// Package revokedtokens declares the server-side repository contract for the
// credential revocation list.
package revokedtokens

import "context"

// Repository records revoked credential ids (jti).
type Repository interface {
	// Revoke adds jti to the revocation list. Revoking an already revoked
	// id is not an error.
	Revoke(ctx context.Context, jti string) error

	// IsRevoked reports whether jti is on the revocation list.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
