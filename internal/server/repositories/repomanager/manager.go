// Package repomanager provides the RepositoryManager abstraction services
// depend on, a PostgreSQL implementation wired to goose migrations, and Open,
// which picks a backend from a DSN.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/messages"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX handle and the
// Transactor that produces such handles.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Transactor() dbx.Transactor
	Users(db dbx.DBTX) users.Repository
	Messages(db dbx.DBTX) messages.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
	Close() error
}
