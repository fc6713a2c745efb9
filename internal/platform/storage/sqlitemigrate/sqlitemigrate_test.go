package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "migrate.db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsRunsInOrder(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"002_add_column.sql": {Data: []byte("ALTER TABLE demo ADD COLUMN name TEXT;")},
		"001_create.sql":     {Data: []byte("CREATE TABLE demo (id INTEGER PRIMARY KEY);")},
	}

	if err := ApplyMigrations(sqlDB, migrationFS, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := sqlDB.Exec("INSERT INTO demo (id, name) VALUES (1, 'a')"); err != nil {
		t.Fatalf("schema incomplete after migrations: %v", err)
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"001_create.sql": {Data: []byte("CREATE TABLE demo (id INTEGER PRIMARY KEY);")},
	}

	if err := ApplyMigrations(sqlDB, migrationFS, ""); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ApplyMigrations(sqlDB, migrationFS, ""); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("applied migrations = %d, want 1", count)
	}
}

func TestApplyMigrationsSkipsEmptyFiles(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"001_empty.sql": {Data: []byte("\n  \n")},
	}

	if err := ApplyMigrations(sqlDB, migrationFS, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	if err := ApplyMigrations(nil, fstest.MapFS{}, ""); err == nil {
		t.Fatal("expected error for nil db")
	}
}
