package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/avaliacao/core"
)

// repo holds what every repository shares. Queries are written with "?" placeholders
// and rebound for the driver the database was opened with.
type repo struct {
	exec     core.DBExecutor
	bindType int
}

func newRepo(db *sqlx.DB) repo {
	return repo{exec: db, bindType: sqlx.BindType(db.DriverName())}
}

func (r repo) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return r.exec
}

// selectContext scans all rows into dest, a pointer to a slice of structs.
func (r repo) selectContext(ctx context.Context, exec []core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	rows, err := r.getExec(exec).QueryContext(ctx, sqlx.Rebind(r.bindType, query), args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	return sqlx.StructScan(rows, dest)
}

// getContext scans a single row into dest; it returns sql.ErrNoRows when there is none.
func (r repo) getContext(ctx context.Context, exec []core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	row := r.getExec(exec).QueryRowContext(ctx, sqlx.Rebind(r.bindType, query), args...)
	return row.Scan(dest)
}
