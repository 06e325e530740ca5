package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/admissions/internal/dbx"
	"github.com/dmitrijs2005/admissions/internal/server/repositories/applications"
	"github.com/dmitrijs2005/admissions/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a db or tx handle, so a
// service can run several repository calls inside one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Applications(db dbx.DBTX) applications.Repository
}
