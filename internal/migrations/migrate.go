package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const versionTable = "schema_migrations_migrate"

var versionPrefix = regexp.MustCompile(`^0*([0-9]+)_`)

// RunMigrations applies the SQL files in dir (normally ./migrations).
func RunMigrations(databaseURL, dir string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: versionTable})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	baseline(sqlDB, m, dir)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	log.Printf("[MIGRATE] migrations in %s applied", dir)
	return nil
}

// baseline marks a hand-created plan schema as current so Up does not try to
// recreate shot_plans.
func baseline(db *sql.DB, m *migrate.Migrate, dir string) {
	if !tableExists(db, "shot_plans") || tableExists(db, versionTable) {
		return
	}
	latest := findLatestMigrationVersion(dir)
	if latest == 0 {
		return
	}
	log.Printf("[MIGRATE] shot_plans exists without version table; forcing version %d", latest)
	if err := m.Force(int(latest)); err != nil {
		log.Printf("[MIGRATE] force to version %d failed: %v", latest, err)
	}
}

func tableExists(db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", name).Scan(&exists)
	return err == nil && exists
}

// findLatestMigrationVersion returns the highest numeric prefix (000001_...)
// among the files in dir, or 0 when there are none.
func findLatestMigrationVersion(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var latest int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := versionPrefix.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		if v, err := strconv.ParseInt(match[1], 10, 64); err == nil && v > latest {
			latest = v
		}
	}
	return latest
}
