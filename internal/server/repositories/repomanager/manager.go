package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/coursekeeper/internal/dbx"
	"github.com/dmitrijs2005/coursekeeper/internal/server/repositories/lessons"
	"github.com/dmitrijs2005/coursekeeper/internal/server/repositories/sections"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Sections(db dbx.DBTX) sections.Repository
	Lessons(db dbx.DBTX) lessons.Repository
}
