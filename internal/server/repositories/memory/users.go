package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/google/uuid"
)

type userRepository struct {
	s *store
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := r.s.users[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.s.emails[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()

	stored := *user
	stored.PasswordHash = append([]byte(nil), user.PasswordHash...)
	r.s.users[user.UserName] = &stored
	r.s.emails[user.Email] = user.UserName

	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := r.s.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}
