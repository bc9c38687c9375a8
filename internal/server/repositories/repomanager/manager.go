package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/holocron/internal/dbx"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/films"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, and owns the schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Films(db dbx.DBTX) films.Repository
}
