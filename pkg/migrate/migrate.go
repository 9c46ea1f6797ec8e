package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where authored migrations live in the repository.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

func embeddedMigrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// RunEmbedded executes a goose command against the migrations compiled into
// the binary, so it works regardless of the working directory.
func RunEmbedded(ctx context.Context, db *sql.DB, command string, args ...string) error {
	return Run(ctx, db, "", command, args...)
}

// Run executes a goose command. An empty dir selects the embedded migrations.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	restore, dir, err := useSource(dir)
	if err != nil {
		return err
	}
	defer restore()

	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	restore, dir, err := useSource(dir)
	if err != nil {
		return err
	}
	defer restore()

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

// useSource points goose at the embedded migrations when dir is empty and
// returns a func restoring the default filesystem.
func useSource(dir string) (func(), string, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return func() {}, "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir != "" {
		return func() {}, dir, nil
	}
	goose.SetBaseFS(embedded)
	return func() { goose.SetBaseFS(nil) }, "migrations", nil
}
