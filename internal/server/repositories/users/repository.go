// Package users declares the user directory repository and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/postbox/internal/server/models"
)

// Repository stores identities. Create fails with common.ErrorAlreadyExists
// when the username or email is taken; lookups return common.ErrorNotFound
// for unknown users.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
