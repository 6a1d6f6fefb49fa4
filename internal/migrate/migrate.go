// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/FredericTischler/safe-zone/migrations"
)

// Services with an embedded schema.
const (
	Identity = "identity"
	Catalog  = "catalog"
	Media    = "media"
)

// VersionTable is the goose bookkeeping table of service, so services can
// share one database without clobbering each other's versions.
func VersionTable(service string) string {
	return "goose_" + service + "_version"
}

func checkService(service string) error {
	files, err := fs.Glob(migrations.FS, service+"/*.sql")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("migrate: no migrations for service %q", service)
	}
	return nil
}

// Up runs all pending migrations of service from the embedded filesystem.
func Up(ctx context.Context, dsn, service string) error {
	if err := checkService(service); err != nil {
		return err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(VersionTable(service))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, service)
}
