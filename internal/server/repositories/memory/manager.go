// Package memory is an in-process storage backend selected with the
// "memory" DSN. It keeps users, messages and revoked token ids in maps
// guarded by one mutex.
//
// Repositories vended by Manager do not lock on their own: they must only
// be used inside Manager.Transactor().WithTx, which holds the lock for the
// whole unit of work. There is no rollback, so repository methods validate
// before they mutate.
package memory

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/messages"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/users"
)

type store struct {
	mu sync.Mutex

	users       map[string]*models.User // by username
	emails      map[string]string       // email -> username
	messages    map[int64]*models.Message
	lastMessage int64
	revoked     map[string]struct{}
}

// Manager vends repositories over a shared in-memory store.
type Manager struct {
	s *store
}

func NewManager() *Manager {
	return &Manager{s: &store{
		users:    make(map[string]*models.User),
		emails:   make(map[string]string),
		messages: make(map[int64]*models.Message),
		revoked:  make(map[string]struct{}),
	}}
}

// RunMigrations is a no-op; the maps need no schema.
func (m *Manager) RunMigrations(ctx context.Context) error { return nil }

func (m *Manager) Transactor() dbx.Transactor { return transactor{s: m.s} }

func (m *Manager) Users(dbx.DBTX) users.Repository { return &userRepository{s: m.s} }

func (m *Manager) Messages(dbx.DBTX) messages.Repository { return &messageRepository{s: m.s} }

func (m *Manager) RevokedTokens(dbx.DBTX) revokedtokens.Repository {
	return &revokedTokenRepository{s: m.s}
}

func (m *Manager) Close() error { return nil }

type transactor struct {
	s *store
}

// WithTx runs fn under the store lock. The DBTX passed to fn is nil;
// memory repositories ignore it.
func (t transactor) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return fn(ctx, nil)
}
