package store

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// migrateUp applies every pending migration embedded under
// migrations/, following internal/db.newMigrate's pattern of wiring
// the iofs source driver against the already-open sqlite connection
// rather than letting golang-migrate open its own.
//
// The returned *migrate.Migrate is never closed: its sqlite driver's
// Close() would close the underlying *sql.DB too, which Store owns
// and closes itself in Close().
func (s *Store) migrateUp() error {
	const op = "store.migrateUp"

	sub, err := migrationsSubFS()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("%s: iofs source: %w", op, err)
	}
	dbDriver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("%s: sqlite driver: %w", op, err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("%s: migrate instance: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
