// Package repomanager vends repositories bound to a database handle and owns
// the connection lifecycle for the configured storage driver.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/motek/internal/dbx"
	"github.com/dmitrijs2005/motek/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/motek/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository

	// Conn is the non-transactional handle to pass to the factories.
	Conn() dbx.DBTX
	// WithTx runs fn with a transactional handle.
	WithTx(ctx context.Context, fn dbx.TxFunc) error

	Ping(ctx context.Context) error
	Close() error
}
