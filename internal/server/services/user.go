// Package services contains server-side business logic. UserService covers
// the user directory and credentials; MessageService covers the message store.
// Every public method runs its storage work as one transaction through the
// repository manager's Transactor.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/auth"
	"github.com/dmitrijs2005/postbox/internal/server/config"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides identity and credential operations:
// - Register: create users
// - Login: verify credentials and mint a token pair
// - Refresh: mint a new access token for a refresh token's owner
// - Logout: put the presented tokens on the revocation list
// - Authenticate: verify a token and check the revocation list
type UserService struct {
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	hashCost                     int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		hashCost:                     cfg.PasswordHashCost,
	}
}

// Register validates the input, hashes the password and creates the user.
// A taken username or email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	for _, f := range []struct{ name, value string }{
		{"username", username}, {"email", email}, {"password", password},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return nil, err
		}
	}
	if err := limitField("username", username, models.MaxUsernameLength); err != nil {
		return nil, err
	}
	if err := limitField("email", email, models.MaxEmailLength); err != nil {
		return nil, err
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password too long", common.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{UserName: username, Email: email, PasswordHash: hash}
	err = s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Lookup returns the user with exactly this username or common.ErrorNotFound.
func (s *UserService) Lookup(ctx context.Context, username string) (*models.User, error) {
	var user *models.User
	err := s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).GetByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyPassword reports whether password matches the user's stored hash.
func (s *UserService) VerifyPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) == nil
}

// Login verifies the password and, on success, returns a new TokenPair.
// Unknown users and wrong passwords both yield common.ErrInvalidCredentials;
// for unknown users a comparison against a dummy hash still runs.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if err := requireField("username", username); err != nil {
		return nil, err
	}
	if err := requireField("password", password); err != nil {
		return nil, err
	}

	user, err := s.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.getDummyHash(), []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if !s.VerifyPassword(user, password) {
		return nil, common.ErrInvalidCredentials
	}

	return s.generateTokenPair(user.UserName)
}

// Refresh mints a new access token for the owner of an already
// authenticated refresh token.
func (s *UserService) Refresh(ctx context.Context, refresh *auth.Claims) (string, error) {
	if refresh == nil || refresh.Kind != auth.KindRefresh {
		return "", common.ErrInvalidToken
	}
	access, _, err := auth.GenerateToken(refresh.Username, auth.KindAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return access, nil
}

// Logout revokes the authenticated access token and, when refreshToken is
// non-empty, that refresh token as well. The refresh token must belong to
// the same user; an expired one is already unusable and is skipped.
func (s *UserService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if access == nil {
		return common.ErrInvalidToken
	}
	jtis := []string{access.ID}

	if refreshToken != "" {
		refresh, err := auth.ParseToken(refreshToken, auth.KindRefresh, s.jwtSecret)
		switch {
		case errors.Is(err, common.ErrTokenExpired):
		case err != nil:
			return err
		case refresh.Username != access.Username:
			return common.ErrInvalidToken
		default:
			jtis = append(jtis, refresh.ID)
		}
	}

	return s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RevokedTokens(tx)
		for _, jti := range jtis {
			if err := repo.Revoke(ctx, jti); err != nil {
				return fmt.Errorf("error revoking token: %w", err)
			}
		}
		return nil
	})
}

// Authenticate verifies a token of the expected kind and rejects it with
// common.ErrInvalidToken if it has been revoked.
func (s *UserService) Authenticate(ctx context.Context, token string, kind auth.TokenKind) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, kind, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	revoked, err := s.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Revoke puts jti on the revocation list. It is idempotent.
func (s *UserService) Revoke(ctx context.Context, jti string) error {
	return s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.RevokedTokens(tx).Revoke(ctx, jti)
	})
}

// IsRevoked reports whether jti is on the revocation list.
func (s *UserService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.repomanager.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		revoked, err = s.repomanager.RevokedTokens(tx).IsRevoked(ctx, jti)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("error checking revocation: %w", err)
	}
	return revoked, nil
}

// --- helpers below ---

func (s *UserService) getDummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("postbox-dummy-password"), s.hashCost)
	})
	return s.dummyHash
}

func (s *UserService) generateTokenPair(username string) (*TokenPair, error) {
	access, _, err := auth.GenerateToken(username, auth.KindAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, _, err := auth.GenerateToken(username, auth.KindRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
