// Package repomanager vends repositories bound to either a pool or a
// transaction, so services can group writes with dbx.WithTx.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/diary/internal/dbx"
	"github.com/dmitrijs2005/diary/internal/server/repositories/confirmations"
	"github.com/dmitrijs2005/diary/internal/server/repositories/customfields"
	"github.com/dmitrijs2005/diary/internal/server/repositories/entries"
	"github.com/dmitrijs2005/diary/internal/server/repositories/settings"
	"github.com/dmitrijs2005/diary/internal/server/repositories/tags"
	"github.com/dmitrijs2005/diary/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Confirmations(db dbx.DBTX) confirmations.Repository
	Entries(db dbx.DBTX) entries.Repository
	Tags(db dbx.DBTX) tags.Repository
	CustomFields(db dbx.DBTX) customfields.Repository
	Settings(db dbx.DBTX) settings.Repository
}
