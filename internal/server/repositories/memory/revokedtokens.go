package memory

import "context"

type revokedTokenRepository struct {
	s *store
}

func (r *revokedTokenRepository) Revoke(ctx context.Context, jti string) error {
	r.s.revoked[jti] = struct{}{}
	return nil
}

func (r *revokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, ok := r.s.revoked[jti]
	return ok, nil
}
