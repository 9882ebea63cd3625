package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ddlLoaders = make(map[string]DDLLoader)

// HDb is the shared database handle. The embedded DDLLoader carries the
// schema for the driver the handle was opened with.
type HDb struct {
	*sqlx.DB
	DDLLoader
}

func NewHDb(driverName, dataSourceUrl string) (*HDb, error) {
	ddlLoader, ok := ddlLoaders[driverName]
	if !ok {
		return nil, fmt.Errorf("no schema registered for driver %q", driverName)
	}

	db, err := sqlx.Open(driverName, dataSourceUrl)
	if err != nil {
		return nil, err
	}
	ddlLoader.Configure(db)

	return &HDb{db, ddlLoader}, nil
}

// Migrate creates any missing tables and indexes. It is safe to run on
// every start.
func (hdb *HDb) Migrate(ctx context.Context) error {
	for _, stmt := range hdb.LoadDDL() {
		if _, err := hdb.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

type DDLLoader interface {
	LoadDDL() []string
	// Configure applies driver specific pool settings.
	Configure(*sqlx.DB)
}
