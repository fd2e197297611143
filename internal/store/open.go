package store

import (
	"context"
	"errors"
	"fmt"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open selects a backend by driver name. SQLite is the embedded
// development store; Postgres is the networked production store.
func Open(ctx context.Context, driver, sqlitePath, postgresDSN string) (Repo, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, sqlitePath)
	case DriverPostgres:
		if postgresDSN == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres driver")
		}
		return OpenPostgres(ctx, postgresDSN)
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}
