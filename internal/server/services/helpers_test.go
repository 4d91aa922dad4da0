package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/config"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/memory"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/messages"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		PasswordHashCost:             bcrypt.MinCost,
	}
}

// newServices wires both services over a fresh in-memory backend.
func newServices(t *testing.T) (*UserService, *MessageService) {
	t.Helper()
	m := memory.NewManager()
	return NewUserService(m, testConfig()), NewMessageService(m)
}

func mustRegister(t *testing.T, s *UserService, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := s.Register(context.Background(), n, n+"@example.com", n+"-pw"); err != nil {
			t.Fatalf("Register(%s) error: %v", n, err)
		}
	}
}

// --- fakes for failure paths ---

type passTransactor struct{}

func (passTransactor) WithTx(ctx context.Context, fn dbx.TxFunc) error { return fn(ctx, nil) }

type fakeUsersRepo struct {
	createErr error
	getOut    *models.User
	getErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeMessagesRepo struct {
	messages.Repository
	detachErr error
	listErr   error
}

func (f *fakeMessagesRepo) Detach(ctx context.Context, id int64, userID string) (bool, bool, error) {
	return false, false, f.detachErr
}

func (f *fakeMessagesRepo) ListSent(ctx context.Context, userID string) ([]models.MessageSummary, error) {
	return nil, f.listErr
}

type fakeRevokedRepo struct {
	revokeErr error
	checkErr  error
	revoked   []string
}

func (f *fakeRevokedRepo) Revoke(ctx context.Context, jti string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, jti)
	return nil
}

func (f *fakeRevokedRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return false, f.checkErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	m *fakeMessagesRepo
	r *fakeRevokedRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context) error                { return nil }
func (m *fakeRepoManager) Transactor() dbx.Transactor                         { return passTransactor{} }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) Messages(db dbx.DBTX) messages.Repository           { return m.m }
func (m *fakeRepoManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository { return m.r }
func (m *fakeRepoManager) Close() error                                       { return nil }
