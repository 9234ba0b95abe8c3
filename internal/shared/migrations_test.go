package shared

import (
	"errors"
	"slices"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[len(migrations)-1].Name != "promotion_tables" {
			t.Errorf("expected latest migration to be promotion_tables, got %q", migrations[len(migrations)-1].Name)
		}

		for _, m := range migrations {
			if m.Up == "" {
				t.Errorf("migration version %d missing up SQL", m.Version)
			}
			if m.Down == "" {
				t.Errorf("migration version %d missing down SQL", m.Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		for _, table := range []string{"session_storage", "users", "releases", "promotion_tasks"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		var seq int
		if err := db.QueryRow("SELECT value FROM promotion_tasks_sequence WHERE id = 1").Scan(&seq); err != nil {
			t.Errorf("sequence row should be seeded: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var newCount int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount)
		if err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount >= count {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", newCount, count)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
	t.Run("Rollback Everything", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		versions, err := AppliedVersions(db)
		if err != nil {
			t.Fatalf("failed to list versions: %v", err)
		}
		if !slices.IsSorted(versions) {
			t.Errorf("expected ascending versions, got %v", versions)
		}

		for range versions {
			if err := RollbackMigration(db); err != nil {
				t.Fatalf("rollback failed: %v", err)
			}
		}

		if _, err := db.Exec("SELECT 1 FROM promotion_tasks LIMIT 1"); err == nil {
			t.Error("expected promotion_tasks to be dropped")
		}
		if err := RollbackMigration(db); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{name: "empty", script: "", want: nil},
		{name: "comments only", script: "-- nothing\n  -- here\n", want: nil},
		{
			name:   "two statements",
			script: "CREATE TABLE a (id INTEGER); -- first\nCREATE TABLE b (id INTEGER);\n",
			want:   []string{"CREATE TABLE a (id INTEGER)", "CREATE TABLE b (id INTEGER)"},
		},
		{
			name:   "multi-line statement",
			script: "CREATE TABLE c (\n  id INTEGER, -- key\n  name TEXT\n);",
			want:   []string{"CREATE TABLE c (\nid INTEGER,\nname TEXT\n)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitStatements(tt.script)
			if !slices.Equal(got, tt.want) {
				t.Errorf("splitStatements() = %q, want %q", got, tt.want)
			}
		})
	}
}
