package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/postbox/internal/server/repositories/memory"
)

// MemoryDSN selects the in-process backend.
const MemoryDSN = "memory"

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open returns a RepositoryManager for dsn: the in-memory backend for
// MemoryDSN, PostgreSQL (pgx driver) for anything else. The PostgreSQL
// connection is verified with a ping.
func Open(ctx context.Context, dsn string) (RepositoryManager, error) {
	if dsn == MemoryDSN {
		return memory.NewManager(), nil
	}

	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPostgresRepositoryManager(db), nil
}
