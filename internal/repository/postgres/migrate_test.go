package postgres

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/plannerhq/planner/migrations"
)

func openMigrateDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func appliedVersions(t *testing.T, db *sql.DB) map[string]bool {
	t.Helper()
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		t.Fatalf("failed to query schema_migrations: %v", err)
	}
	defer rows.Close()

	versions := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			t.Fatalf("failed to scan version: %v", err)
		}
		versions[v] = true
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("failed to iterate versions: %v", err)
	}
	return versions
}

func TestRunMigrations(t *testing.T) {
	db := openMigrateDB(t)

	if err := RunMigrations(db, migrations.GetFS()); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	versions := appliedVersions(t, db)
	for _, want := range []string{"001_create_users.sql", "002_create_tasks.sql", "003_create_habits.sql"} {
		if !versions[want] {
			t.Errorf("migration %s not recorded", want)
		}
	}

	for _, table := range []string{"users", "tasks", "habits", "habit_checkins"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s missing after migrations: %v", table, err)
		}
	}
}

func TestRunMigrations_SkipsApplied(t *testing.T) {
	db := openMigrateDB(t)

	fsys := fstest.MapFS{
		"001_one.sql": {Data: []byte("CREATE TABLE one (id INTEGER PRIMARY KEY);")},
	}

	if err := RunMigrations(db, fsys); err != nil {
		t.Fatalf("first RunMigrations() error = %v", err)
	}

	// A second run must not re-execute the recorded migration; the CREATE
	// TABLE without IF NOT EXISTS would fail if it did.
	if err := RunMigrations(db, fsys); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}

	fsys["002_two.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE two (id INTEGER PRIMARY KEY);")}
	if err := RunMigrations(db, fsys); err != nil {
		t.Fatalf("RunMigrations() with pending migration error = %v", err)
	}

	versions := appliedVersions(t, db)
	if !versions["001_one.sql"] || !versions["002_two.sql"] {
		t.Errorf("recorded versions = %v, want both migrations", versions)
	}
}
