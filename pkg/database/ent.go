package database

import (
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/ridhamz/AppointmentEase/config"
)

// NewEntDriver opens the main database and wraps it in an ent SQL driver.
func NewEntDriver(cfg config.DatabaseConfig) (*entsql.Driver, error) {
	return NewEntDriverFromConfig(FromCentralConfig(cfg))
}

// NewEntDriverFromConfig opens an ent SQL driver from package Config
func NewEntDriverFromConfig(cfg Config) (*entsql.Driver, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	return entsql.OpenDB(dialect.Postgres, db), nil
}
