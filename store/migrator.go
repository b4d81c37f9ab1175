package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the full schema applied to fresh installations.
const LatestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema when the instance is fresh.
// The full schema lives in store/migration/{driver}/LATEST.sql and is
// applied in one shot; incremental migrations are not needed yet.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}
	if initialized {
		return nil
	}

	schemaPath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	buf, err := migrationFS.ReadFile(schemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema %q", schemaPath)
	}

	slog.Info("initializing database schema", "driver", s.profile.Driver)
	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	return nil
}
