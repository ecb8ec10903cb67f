// Package migrations resolves the embedded enigma schema for a SQL dialect.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	enigma "github.com/goliatone/go-enigma"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const root = "data/sql/migrations"

// RegisterFunc hands a dialect's migration tree to a runner.
type RegisterFunc func(ctx context.Context, fsys fs.FS) error

// FS returns the migration tree for dialect. Postgres files live at the
// root of the tree, sqlite files in its sqlite/ subdirectory.
func FS(source fs.FS, dialect string) (fs.FS, error) {
	if source == nil {
		source = enigma.GetMigrationsFS()
	}

	dir := root
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case DialectPostgres:
	case DialectSQLite:
		dir = root + "/sqlite"
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}

	sub, err := fs.Sub(source, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", dir, err)
	}
	matches, err := fs.Glob(sub, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: glob %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("migrations: %s has no *.up.sql files", dir)
	}
	return sub, nil
}

// Register resolves the embedded tree for dialect and passes it to registerFn.
func Register(ctx context.Context, dialect string, registerFn RegisterFunc) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	fsys, err := FS(nil, dialect)
	if err != nil {
		return err
	}
	if err := registerFn(ctx, fsys); err != nil {
		return fmt.Errorf("migrations: register %s: %w", dialect, err)
	}
	return nil
}
